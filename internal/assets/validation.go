package assets

import (
	"strings"
	"time"

	"github.com/zecadelgado/patp/internal/depreciation"
)

// validateInput checks required fields and value ranges without
// touching the store. It returns the parsed acquisition date on
// success so callers do not parse twice.
func validateInput(in Input) (time.Time, error) {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.SerialNumber) == "" {
		fields["serial_number"] = "required"
	}
	if in.CategoryID <= 0 {
		fields["category_id"] = "required"
	}
	if in.SectorID <= 0 {
		fields["sector_id"] = "required"
	}
	if in.Status == "" {
		fields["status"] = "required"
	} else if !ValidStatus(in.Status) || in.Status == StatusWrittenOff {
		fields["status"] = "invalid"
	}
	if in.PurchaseValue < 0 {
		fields["purchase_value"] = "must be non-negative"
	}
	switch in.Condition {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
	default:
		fields["condition"] = "invalid"
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		fields["quantity"] = "must be non-negative"
	}

	acquiredAt, err := depreciation.ParseAcquisitionDate(in.AcquiredAt)
	if err != nil {
		fields["acquired_at"] = "invalid date"
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return acquiredAt, nil
}
