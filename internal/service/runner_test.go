package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/erimojdehi/aris-driver-check/internal/model"
	"github.com/erimojdehi/aris-driver-check/internal/store"
)

// captureSink records deliveries instead of sending them
type captureSink struct {
	subjects []string
	bodies   []string
	notices  []OperatorNotice
}

func (c *captureSink) DeliverSummary(ctx context.Context, subject, html string) error {
	c.subjects = append(c.subjects, subject)
	c.bodies = append(c.bodies, html)
	return nil
}

func (c *captureSink) DeliverNotice(ctx context.Context, notice OperatorNotice) error {
	c.notices = append(c.notices, notice)
	return nil
}

type RunnerSuite struct {
	suite.Suite
	ctx       context.Context
	snapshots *store.MemoryStore
	sink      *captureSink
	runner    *Runner
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctx = context.Background()
	s.snapshots = store.NewMemoryStore()
	s.sink = &captureSink{}
	s.runner = NewRunner(s.snapshots)
	s.runner.Sink = s.sink
	s.runner.Roster = model.NewRoster([]model.Operator{{
		OperatorID: "4411", Name: "DOE, JANE", LicenceNumber: "A1234567890123X",
	}})
}

func (s *RunnerSuite) input(status string) string {
	return strings.Join([]string{
		driverLine("A1234567890123X", "DOE, JANE", "DZ", status, "270315"),
		commentLine("CORRECTIVE LENSES"),
	}, "\n")
}

func (s *RunnerSuite) TestBaselineRun() {
	runDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	stats, err := s.runner.Run(s.ctx, runDate, strings.NewReader(s.input("LICENCED")))
	s.Require().NoError(err)

	s.True(stats.Baseline)
	s.Equal(1, stats.TotalParsed)
	s.Equal(1, stats.Added)
	s.Equal(0, stats.StatusChanged)
	s.True(stats.ReportSent)
	s.Require().Len(s.sink.subjects, 1)
	s.Empty(s.sink.notices, "new operators are not individually notified")

	stored, err := s.snapshots.Read(s.ctx, runDate)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(1, stored.Len())
}

func (s *RunnerSuite) TestDayOverDayRun() {
	dayOne := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	dayTwo := dayOne.AddDate(0, 0, 1)

	_, err := s.runner.Run(s.ctx, dayOne, strings.NewReader(s.input("LICENCED")))
	s.Require().NoError(err)

	stats, err := s.runner.Run(s.ctx, dayTwo, strings.NewReader(s.input("LICENCE SUSPENDED")))
	s.Require().NoError(err)

	s.False(stats.Baseline)
	s.Equal(0, stats.Added)
	s.Equal(1, stats.StatusChanged)
	s.Equal(1, stats.Unlicensed)

	s.Require().Len(s.sink.subjects, 2)
	s.Contains(s.sink.subjects[1], "**DRIVER SUSPENDED**")
	s.Require().Len(s.sink.notices, 1)
	s.Equal("4411", s.sink.notices[0].Operator.OperatorID)
}

func (s *RunnerSuite) TestEmptyInputFailsStructurally() {
	runDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := s.runner.Run(s.ctx, runDate, strings.NewReader("\n\n"))
	s.Require().Error(err)
	s.ErrorIs(err, ErrEmptyInput)
	s.Empty(s.sink.subjects, "nothing is delivered for a failed run")
}

func (s *RunnerSuite) TestRerunOverwritesDateSlot() {
	runDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := s.runner.Run(s.ctx, runDate, strings.NewReader(s.input("LICENCED")))
	s.Require().NoError(err)
	_, err = s.runner.Run(s.ctx, runDate, strings.NewReader(s.input("LICENCE SUSPENDED")))
	s.Require().NoError(err)

	stored, err := s.snapshots.Read(s.ctx, runDate)
	s.Require().NoError(err)
	s.Equal(model.StatusSuspended, stored.Get("A1234567890123X").Status)
}

func (s *RunnerSuite) TestParseErrorsDegradeNotAbort() {
	runDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	lines := strings.Join([]string{
		driverLine("A1234567890123X", "DOE, JANE", "DZ", "LICENCED", "9X9X9X"),
		driverLine("B1234567890123X", "ROE, RICK", "G", "LICENCED", "270315"),
	}, "\n")

	stats, err := s.runner.Run(s.ctx, runDate, strings.NewReader(lines))
	s.Require().NoError(err)
	s.Equal(2, stats.TotalParsed)
	s.Equal(1, stats.ParseErrors)
	s.Require().Len(s.sink.bodies, 1)
	s.Contains(s.sink.bodies[0], "BAD_DATE", "field errors surface in the report body")
}
