package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Validate checks the identifiers and etag of an update request.
// The configuration itself is validated by the recurring package before
// the params are built.
func (p UpdateRuleParams) Validate() error {
	if _, err := uuid.Parse(p.RuleID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, p.RuleID)
	}
	if p.Etag != nil {
		if _, err := ParseEtag(*p.Etag); err != nil {
			return err
		}
	}
	if p.StartDate != nil && p.StartDate.IsZero() {
		return ErrStartDateRequired
	}
	return nil
}

// ParseEtag turns an etag header value ("3" or `"3"`, optionally weak) into
// the version number it encodes.
func ParseEtag(etag string) (int, error) {
	s := strings.TrimSpace(etag)
	s = strings.TrimPrefix(s, "W/")
	s = strings.Trim(s, `"`)
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: malformed etag %q", ErrVersionConflict, etag)
	}
	return v, nil
}
