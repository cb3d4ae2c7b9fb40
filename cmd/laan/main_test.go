package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/annuitet/loan-calculator/internal/calculation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "console-lite")
	assert.Contains(t, out, "detailed-csv")
	assert.Contains(t, out, "plan")
}

func TestExampleThenCalculate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")

	out, err := execute(t, "example", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "calculate", "--config", path, "--format", "csv")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "F5", records[1][0])
	assert.Equal(t, "F10", records[2][0])

	out, err = execute(t, "calculate", "-c", path, "-f", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Cheapest: F10")
	assert.Contains(t, out, "Break-even: installment 46")
}

func TestCalculateWritesReportFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.yaml")
	_, err := execute(t, "example", path)
	require.NoError(t, err)

	out, err := execute(t, "calculate", "--config", path, "--format", "all", "--output", filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Report written to"))
}

func TestCalculateErrors(t *testing.T) {
	_, err := execute(t, "calculate")
	assert.Error(t, err, "missing --config")

	_, err = execute(t, "calculate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestScheduleCommand(t *testing.T) {
	out, err := execute(t, "schedule",
		"--principal", "1000000",
		"--interest-rate", "0.0025",
		"--term", "120",
		"--start", "2019-01-01",
		"--format", "detailed-csv",
	)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 122) // header + rows 0..120
	assert.Equal(t, "1/2019", records[2][2])
	assert.Equal(t, "9656.07", records[2][8])
	assert.Equal(t, "0.00", records[121][7])
}

func TestScheduleCommand_Refinance(t *testing.T) {
	out, err := execute(t, "schedule",
		"--principal", "1000000",
		"--interest-rate", "0.0025",
		"--fee-rate", "0.002125",
		"--term", "20",
		"--start", "2019-01-01",
		"--refinance", "5:0.01:0.002125",
		"--format", "console",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "From installment 1 ")
	assert.Contains(t, out, "From installment 6 ")
}

func TestScheduleCommand_Errors(t *testing.T) {
	_, err := execute(t, "schedule", "--principal", "1000", "--term", "4")
	assert.ErrorIs(t, err, calculation.ErrDegenerateRate)

	_, err = execute(t, "schedule", "--principal", "1000", "--interest-rate", "0.01", "--grace", "5", "--term", "4")
	assert.Error(t, err)

	_, err = execute(t, "schedule", "--principal", "1000", "--interest-rate", "0.01", "--start", "2019-13-01")
	assert.Error(t, err)
}

func TestParseRefinance(t *testing.T) {
	rf, err := parseRefinance("20:0.005:0.002125:24")
	require.NoError(t, err)
	assert.Equal(t, 20, rf.AtInstallment)
	assert.Equal(t, 24, rf.GraceInstallments)
	assert.Equal(t, "0.005", rf.InterestRate.String())
	assert.Equal(t, "0.002125", rf.FeeRate.String())

	for _, bad := range []string{"20", "x:0.1:0", "20:abc:0", "20:0.1:abc", "20:0.1:0:y", "1:2:3:4:5"} {
		_, err := parseRefinance(bad)
		assert.Error(t, err, bad)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	a := &app{verbose: true, logger: zaptest.NewLogger(t)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/api/health", addr))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
