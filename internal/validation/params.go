package validation

import (
	"fmt"
	"math"
	"strings"

	"gocredit/domain/core"
	"gocredit/domain/scale"
	"gocredit/internal/errors"
)

// Tail selects a one-sided or two-sided binomial bound
type Tail string

const (
	OneTail Tail = "one"
	TwoTail Tail = "two"
)

// ParseTail accepts "one" or "two"
func ParseTail(s string) (Tail, error) {
	switch Tail(strings.ToLower(strings.TrimSpace(s))) {
	case OneTail:
		return OneTail, nil
	case TwoTail:
		return TwoTail, nil
	}
	return "", errors.Configuration("tail", fmt.Sprintf("must be \"one\" or \"two\", got %q", s))
}

func checkConfidence(c float64) error {
	if !(c > 0 && c < 1) {
		return errors.Configuration("confidence_level", fmt.Sprintf("must lie in (0,1), got %v", c))
	}
	return nil
}

func checkRows(rows []scale.Row) error {
	if len(rows) == 0 {
		return errors.InvalidInput("master scale has no grades")
	}
	for _, r := range rows {
		if math.IsNaN(r.AvgPD) || r.AvgPD < 0 || r.AvgPD > 1 {
			return errors.InvalidColumn("pd", fmt.Errorf("%w: grade %d PD %v outside [0,1]", core.ErrInvalidColumn, r.Grade, r.AvgPD))
		}
		if r.Total < 0 || r.Bad < 0 || r.Bad > r.Total {
			return errors.InvalidColumn("total_observations", fmt.Errorf("%w: grade %d has %d bads in %d records", core.ErrInvalidColumn, r.Grade, r.Bad, r.Total))
		}
	}
	return nil
}

func gradeSubject(r scale.Row) string {
	return fmt.Sprintf("grade %d", r.Grade)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
