package climatetrace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verdeai/backend/internal/domain"
)

// CountryEmissions is one element of the totals response. Emissions is
// either a plain number of tonnes or an object keyed by gas.
type CountryEmissions struct {
	Country   string          `json:"country"`
	Emissions json.RawMessage `json:"emissions"`
}

// Gas keys tried, in order, when emissions come broken down by gas.
var gasPreference = []string{"co2e_100yr", "co2e", "co2e_20yr", "co2"}

// MapToEmissionsTotals picks the entry for country and converts it to our
// domain model. Missing or zero emissions are reported as ErrNoEmissionsData.
func MapToEmissionsTotals(entries []CountryEmissions, country string, year int) (*domain.EmissionsTotals, error) {
	if len(entries) == 0 {
		return nil, domain.ErrNoEmissionsData
	}

	var entry *CountryEmissions
	for i := range entries {
		if strings.EqualFold(entries[i].Country, country) {
			entry = &entries[i]
			break
		}
	}
	// other countries' totals must never be reported as this one's
	if entry == nil {
		return nil, domain.ErrNoEmissionsData
	}

	tonnes, err := parseTonnes(entry.Emissions)
	if err != nil {
		return nil, err
	}
	if tonnes <= 0 {
		return nil, domain.ErrNoEmissionsData
	}

	return &domain.EmissionsTotals{
		Country:             strings.ToUpper(country),
		Year:                year,
		EmissionsTonnes:     tonnes,
		EmissionsKilotonnes: TonnesToKilotonnes(tonnes),
	}, nil
}

// TonnesToKilotonnes rounds to the nearest whole kilotonne.
func TonnesToKilotonnes(tonnes float64) int64 {
	return int64(math.Round(tonnes / 1000))
}

func parseTonnes(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, domain.ErrNoEmissionsData
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: unexpected emissions value %q", domain.ErrEmissionsUnavailable, text)
		}
		return value, nil
	}

	var byGas map[string]*float64
	if err := json.Unmarshal(raw, &byGas); err != nil {
		return 0, fmt.Errorf("%w: unexpected emissions value %s", domain.ErrEmissionsUnavailable, string(raw))
	}
	for _, gas := range gasPreference {
		if v, ok := byGas[gas]; ok && v != nil {
			return *v, nil
		}
	}
	return 0, domain.ErrNoEmissionsData
}
