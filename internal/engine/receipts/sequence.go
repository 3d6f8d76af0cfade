package receipts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPrefix = "REC"
	DefaultFormat = "{prefix}/{YY}/{MM}/{XXX}"
)

var ErrNotFound = errors.New("receipt sequence not found")

// Sequence is an organization's receipt numbering state: a format template
// and the next unissued counter value. NextSeq only ever moves forward.
type Sequence struct {
	OrgID     string `json:"org_id"`
	Prefix    string `json:"prefix"`
	Format    string `json:"format"`
	NextSeq   int64  `json:"next_seq"`
	UpdatedAt int64  `json:"updated_at"`
}

// FormatNumber substitutes the template placeholders: {prefix}, {YY} (two
// digit year), {MM} (two digit month), {XXX} (sequence, zero padded to three
// digits minimum). Unknown placeholders are left verbatim.
func FormatNumber(prefix, format string, seq int64, now time.Time) string {
	if format == "" {
		format = DefaultFormat
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	r := strings.NewReplacer(
		"{prefix}", prefix,
		"{YY}", now.Format("06"),
		"{MM}", now.Format("01"),
		"{XXX}", fmt.Sprintf("%03d", seq),
	)
	return r.Replace(format)
}
