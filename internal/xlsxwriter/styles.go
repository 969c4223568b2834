package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Role is the semantic role of a cell in the report.
type Role string

const (
	RoleCaption      Role = "caption"
	RoleColumnHeader Role = "column_header"
	RoleDataRow      Role = "data_row"
	RoleDataName     Role = "data_row_name"
	RoleCurrency     Role = "currency_cell"
	RoleInteger      Role = "integer_cell"
	RoleTotalLabel   Role = "total_label"
	RoleTotalBlank   Role = "total_blank"
	RoleTotalAmount  Role = "total_currency"
	RoleTotalCount   Role = "total_integer"
)

// IntegerFormat renders counts as grouped integers.
const IntegerFormat = "# ### ##0"

const (
	fontFamily  = "Arial"
	borderColor = "CCC085"
	headerFill  = "F8F2D8"
	dataFill    = "FFFFFF"
)

// CurrencyFormat renders amounts with two decimals and a unit suffix,
// negatives in red.
func CurrencyFormat(suffix string) string {
	return fmt.Sprintf(`# ### ##0.00"%[1]s";[Red]-# ##0.00"%[1]s"`, suffix)
}

// preset returns a new style definition for role. Every call builds fresh
// values so that adjusting one role never leaks into another.
func preset(role Role, currencySuffix string) *excelize.Style {
	switch role {
	case RoleCaption:
		return &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 14, Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}
	case RoleColumnHeader:
		return &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 8},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    borders(),
			Fill:      fill(headerFill),
		}
	case RoleDataRow:
		return &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 8},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    borders(),
			Fill:      fill(dataFill),
		}
	case RoleDataName:
		return &excelize.Style{
			Font:      &excelize.Font{Family: fontFamily, Size: 8},
			Alignment: &excelize.Alignment{Horizontal: "left"},
			Border:    borders(),
			Fill:      fill(dataFill),
		}
	case RoleCurrency:
		return numberStyle(CurrencyFormat(currencySuffix), false)
	case RoleInteger:
		return numberStyle(IntegerFormat, false)
	case RoleTotalLabel, RoleTotalBlank:
		s := numberStyle(CurrencyFormat(currencySuffix), true)
		s.Alignment = &excelize.Alignment{Horizontal: "left"}
		return s
	case RoleTotalAmount:
		return numberStyle(CurrencyFormat(currencySuffix), true)
	case RoleTotalCount:
		return numberStyle(IntegerFormat, true)
	default:
		return &excelize.Style{}
	}
}

func numberStyle(format string, total bool) *excelize.Style {
	s := &excelize.Style{
		Font:         &excelize.Font{Family: fontFamily, Size: 8, Bold: total},
		Border:       borders(),
		CustomNumFmt: &format,
	}
	if total {
		s.Fill = fill(headerFill)
	}
	return s
}

func borders() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		out = append(out, excelize.Border{Type: side, Color: borderColor, Style: 1})
	}
	return out
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

// registerStyles adds every role to f and returns the style IDs by role.
func registerStyles(f *excelize.File, currencySuffix string) (map[Role]int, error) {
	roles := []Role{
		RoleCaption, RoleColumnHeader, RoleDataRow, RoleDataName, RoleCurrency,
		RoleInteger, RoleTotalLabel, RoleTotalBlank, RoleTotalAmount, RoleTotalCount,
	}

	ids := make(map[Role]int, len(roles))
	for _, role := range roles {
		id, err := f.NewStyle(preset(role, currencySuffix))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", role, err)
		}
		ids[role] = id
	}
	return ids, nil
}
