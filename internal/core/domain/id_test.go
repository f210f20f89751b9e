package domain

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIDGenerator_Format(t *testing.T) {
	gen := NewIDGenerator("atil")

	assert.Regexp(t, regexp.MustCompile(`^I-ATIL[0-9A-F]{8}$`), gen.Part())
	assert.Regexp(t, regexp.MustCompile(`^V-ATIL[0-9A-F]{8}$`), gen.Vendor())
	assert.Regexp(t, regexp.MustCompile(`^S-ATIL[0-9A-F]{8}$`), gen.Sale())
	assert.Regexp(t, regexp.MustCompile(`^A-ATIL[0-9A-F]{12}$`), gen.Audit())
}

func TestIDGenerator_DefaultCode(t *testing.T) {
	assert.Equal(t, DefaultShopCode, NewIDGenerator("").ShopCode)
}

func TestIDGenerator_Unique(t *testing.T) {
	gen := NewIDGenerator("")
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen.Audit()
		_, dup := seen[id]
		assert.False(t, dup, id)
		seen[id] = struct{}{}
	}
}

func TestNewPart_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      NewPart
		wantErr bool
	}{
		{"ok", NewPart{Name: "Brake pad", Stock: 10, Price: decimal.NewFromInt(50)}, false},
		{"zero stock and price", NewPart{Name: "Filter"}, false},
		{"missing name", NewPart{Stock: 1, Price: decimal.NewFromInt(1)}, true},
		{"negative stock", NewPart{Name: "Filter", Stock: -1}, true},
		{"negative price", NewPart{Name: "Filter", Price: decimal.NewFromFloat(-0.01)}, true},
		{"two decimal places", NewPart{Name: "Filter", Price: decimal.RequireFromString("10.50")}, false},
		{"trailing zeros past cents", NewPart{Name: "Filter", Price: decimal.RequireFromString("10.500")}, false},
		{"sub-cent price", NewPart{Name: "Filter", Price: decimal.RequireFromString("10.005")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSession_Validate(t *testing.T) {
	assert.NoError(t, Session{Username: "admin", Role: RoleAdmin}.Validate())
	assert.ErrorIs(t, Session{Username: "admin"}.Validate(), ErrUnauthorized)
	assert.ErrorIs(t, Session{Role: RoleEmployee}.Validate(), ErrUnauthorized)
	assert.ErrorIs(t, Session{Username: "x", Role: "root"}.Validate(), ErrUnauthorized)
}

func TestActionType_Valid(t *testing.T) {
	assert.Len(t, ActionTypes(), 14)
	for _, a := range ActionTypes() {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, ActionType("DROP_TABLE").Valid())
}

func TestActionType_Mutating(t *testing.T) {
	mutating := 0
	for _, a := range ActionTypes() {
		if a.Mutating() {
			mutating++
		}
	}
	assert.Equal(t, 6, mutating)
	assert.True(t, ActionRecordSale.Mutating())
	assert.False(t, ActionLogin.Mutating())
	assert.False(t, ActionExportWeeklyDemand.Mutating())
}
