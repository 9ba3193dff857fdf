package domain

// Country names arrive from the storefront as Arabic literals. The
// sentinel "دول الخليج" means a Gulf country selected separately via the
// gulfCountry field.
const (
	CountryOman  = "عُمان"
	CountryUAE   = "الإمارات"
	GulfSentinel = "دول الخليج"
)

var gulfCountries = map[string]struct{}{
	"الإمارات": {},
	"السعودية": {},
	"الكويت":   {},
	"قطر":      {},
	"البحرين":  {},
	"أخرى":     {},
}

// IsGulfCountry reports whether name is one of the enumerated Gulf
// destinations.
func IsGulfCountry(name string) bool {
	_, ok := gulfCountries[name]
	return ok
}

// Destination classifies a shipping destination from the raw country value
// and the optional explicit Gulf sub-selection.
type Destination struct {
	// FinalCountry is the value stored on the order and echoed in gateway
	// metadata: the sub-selection when the sentinel was sent, otherwise the
	// country as given.
	FinalCountry string
	IsOman       bool
	IsGulf       bool
	// EffectiveGulf is the Gulf country used for fee tiering; falls back to
	// the raw sub-selection when FinalCountry is empty.
	EffectiveGulf string
}

func ResolveDestination(country, gulfCountry string) Destination {
	d := Destination{
		IsOman: country == CountryOman,
		IsGulf: country == GulfSentinel || IsGulfCountry(country),
	}
	if country == GulfSentinel {
		d.FinalCountry = gulfCountry
	} else {
		d.FinalCountry = country
	}
	d.EffectiveGulf = d.FinalCountry
	if d.EffectiveGulf == "" {
		d.EffectiveGulf = gulfCountry
	}
	return d
}
