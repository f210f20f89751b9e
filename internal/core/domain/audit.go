package domain

import "time"

type ActionType string

const (
	ActionAddInventory       ActionType = "ADD_INVENTORY"
	ActionDeleteInventory    ActionType = "DELETE_INVENTORY"
	ActionAutoReorder        ActionType = "AUTO_REORDER"
	ActionAddVendor          ActionType = "ADD_VENDOR"
	ActionRecordSale         ActionType = "RECORD_SALE"
	ActionCustomerSale       ActionType = "CUSTOMER_SALE"
	ActionLogin              ActionType = "LOGIN"
	ActionLogout             ActionType = "LOGOUT"
	ActionViewReport         ActionType = "VIEW_REPORT"
	ActionExportPDF          ActionType = "EXPORT_PDF"
	ActionViewAuditLog       ActionType = "VIEW_AUDIT_LOG"
	ActionExportAuditLog     ActionType = "EXPORT_AUDIT_LOG"
	ActionViewWeeklyDemand   ActionType = "VIEW_WEEKLY_DEMAND"
	ActionExportWeeklyDemand ActionType = "EXPORT_WEEKLY_DEMAND"
)

var actionTypes = []ActionType{
	ActionAddInventory,
	ActionDeleteInventory,
	ActionAutoReorder,
	ActionAddVendor,
	ActionRecordSale,
	ActionCustomerSale,
	ActionLogin,
	ActionLogout,
	ActionViewReport,
	ActionExportPDF,
	ActionViewAuditLog,
	ActionExportAuditLog,
	ActionViewWeeklyDemand,
	ActionExportWeeklyDemand,
}

// ActionTypes returns every known action type in declaration order.
func ActionTypes() []ActionType {
	out := make([]ActionType, len(actionTypes))
	copy(out, actionTypes)
	return out
}

func (a ActionType) Valid() bool {
	for _, known := range actionTypes {
		if a == known {
			return true
		}
	}
	return false
}

// Mutating reports whether the action stands for a change to inventory,
// vendors or sales. Such entries are only written alongside that change.
func (a ActionType) Mutating() bool {
	switch a {
	case ActionAddInventory, ActionDeleteInventory, ActionAutoReorder,
		ActionAddVendor, ActionRecordSale, ActionCustomerSale:
		return true
	}
	return false
}

// AuditEntry is append-only.
type AuditEntry struct {
	ID       string
	Action   ActionType
	Details  string
	LoggedAt time.Time
	Username string
	Role     Role
}

type AuditFilter struct {
	Action   ActionType
	Username string
	Period   *Period
	Limit    int
}

// AuditQuery is the presentation-facing form of AuditFilter.
type AuditQuery struct {
	Action     ActionType
	Username   string
	DatePrefix string // YYYY, YYYY-MM or YYYY-MM-DD
	Limit      int
}

func (q AuditQuery) Filter(loc *time.Location) (AuditFilter, error) {
	if q.Action != "" && !q.Action.Valid() {
		return AuditFilter{}, &ValidationError{Field: "action_type", Reason: "unknown action " + string(q.Action)}
	}
	period, err := PeriodFromPrefix(q.DatePrefix, loc)
	if err != nil {
		return AuditFilter{}, err
	}
	return AuditFilter{Action: q.Action, Username: q.Username, Period: period, Limit: q.Limit}, nil
}
