package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

var (
	isoDateRe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-(\d{1,2}))?`)
	yearRe     = regexp.MustCompile(`\b(\d{3,4})\b`)
	dayRe      = regexp.MustCompile(`\b(\d{1,2})\b`)
	monthNames = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
)

// dateSortKey turns a free-form genealogical date ("5 May 1850",
// "abt 1850", "1850-05-05", "bef Jan 1901") into a sortable number
// yyyymmdd. Unknown parts are zero; zero means undated.
func dateSortKey(date string) int {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0
	}
	if m := isoDateRe.FindStringSubmatch(date); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return y*10000 + mo*100 + d
	}

	ym := yearRe.FindAllStringSubmatchIndex(date, -1)
	if len(ym) == 0 {
		return 0
	}
	last := ym[len(ym)-1]
	year, _ := strconv.Atoi(date[last[2]:last[3]])

	rest := date[:last[0]]
	month := 0
	for _, word := range strings.FieldsFunc(strings.ToLower(rest), func(r rune) bool {
		return r == ' ' || r == '.' || r == ','
	}) {
		if len(word) >= 3 {
			if m, ok := monthNames[word[:3]]; ok {
				month = m
			}
		}
	}
	day := 0
	if month > 0 {
		if m := dayRe.FindStringSubmatch(rest); m != nil {
			day, _ = strconv.Atoi(m[1])
		}
	}
	return year*10000 + month*100 + day
}

// FactLess orders two facts within a biography group.
type FactLess func(a, b *entities.FactHandle) bool

// ByDate orders facts by date ascending with undated facts last.
func ByDate(a, b *entities.FactHandle) bool {
	ka, kb := dateSortKey(a.Date), dateSortKey(b.Date)
	switch {
	case ka == 0:
		return false
	case kb == 0:
		return true
	default:
		return ka < kb
	}
}
