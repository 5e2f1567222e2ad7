package domain

import "strings"

// Country is one entry of the phone country-code dropdown.
type Country struct {
	Name     string `json:"name"`
	ISO      string `json:"iso"`
	DialCode string `json:"dialCode"`
	Flag     string `json:"flag"`
}

// Countries lists the dial codes offered by the contact form, in display order.
var Countries = []Country{
	{Name: "Israel", ISO: "IL", DialCode: "+972", Flag: "🇮🇱"},
	{Name: "United States", ISO: "US", DialCode: "+1", Flag: "🇺🇸"},
	{Name: "United Kingdom", ISO: "GB", DialCode: "+44", Flag: "🇬🇧"},
	{Name: "Canada", ISO: "CA", DialCode: "+1", Flag: "🇨🇦"},
	{Name: "Australia", ISO: "AU", DialCode: "+61", Flag: "🇦🇺"},
	{Name: "Germany", ISO: "DE", DialCode: "+49", Flag: "🇩🇪"},
	{Name: "France", ISO: "FR", DialCode: "+33", Flag: "🇫🇷"},
	{Name: "Spain", ISO: "ES", DialCode: "+34", Flag: "🇪🇸"},
	{Name: "Italy", ISO: "IT", DialCode: "+39", Flag: "🇮🇹"},
	{Name: "Netherlands", ISO: "NL", DialCode: "+31", Flag: "🇳🇱"},
	{Name: "Belgium", ISO: "BE", DialCode: "+32", Flag: "🇧🇪"},
	{Name: "Switzerland", ISO: "CH", DialCode: "+41", Flag: "🇨🇭"},
	{Name: "Austria", ISO: "AT", DialCode: "+43", Flag: "🇦🇹"},
	{Name: "Sweden", ISO: "SE", DialCode: "+46", Flag: "🇸🇪"},
	{Name: "Norway", ISO: "NO", DialCode: "+47", Flag: "🇳🇴"},
	{Name: "Denmark", ISO: "DK", DialCode: "+45", Flag: "🇩🇰"},
	{Name: "Poland", ISO: "PL", DialCode: "+48", Flag: "🇵🇱"},
	{Name: "Portugal", ISO: "PT", DialCode: "+351", Flag: "🇵🇹"},
	{Name: "Ireland", ISO: "IE", DialCode: "+353", Flag: "🇮🇪"},
	{Name: "Greece", ISO: "GR", DialCode: "+30", Flag: "🇬🇷"},
	{Name: "Cyprus", ISO: "CY", DialCode: "+357", Flag: "🇨🇾"},
	{Name: "Russia", ISO: "RU", DialCode: "+7", Flag: "🇷🇺"},
	{Name: "Ukraine", ISO: "UA", DialCode: "+380", Flag: "🇺🇦"},
	{Name: "Turkey", ISO: "TR", DialCode: "+90", Flag: "🇹🇷"},
	{Name: "United Arab Emirates", ISO: "AE", DialCode: "+971", Flag: "🇦🇪"},
	{Name: "India", ISO: "IN", DialCode: "+91", Flag: "🇮🇳"},
	{Name: "China", ISO: "CN", DialCode: "+86", Flag: "🇨🇳"},
	{Name: "Japan", ISO: "JP", DialCode: "+81", Flag: "🇯🇵"},
	{Name: "South Korea", ISO: "KR", DialCode: "+82", Flag: "🇰🇷"},
	{Name: "Singapore", ISO: "SG", DialCode: "+65", Flag: "🇸🇬"},
	{Name: "Brazil", ISO: "BR", DialCode: "+55", Flag: "🇧🇷"},
	{Name: "Mexico", ISO: "MX", DialCode: "+52", Flag: "🇲🇽"},
	{Name: "Argentina", ISO: "AR", DialCode: "+54", Flag: "🇦🇷"},
	{Name: "South Africa", ISO: "ZA", DialCode: "+27", Flag: "🇿🇦"},
}

// SearchCountries filters Countries the way the dropdown's search box does:
// case-insensitive substring on name, ISO code or dial code. An empty query
// returns the full list.
func SearchCountries(query string) []Country {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]Country, len(Countries))
		copy(out, Countries)
		return out
	}
	out := []Country{}
	for _, c := range Countries {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.ISO), q) ||
			strings.Contains(c.DialCode, q) {
			out = append(out, c)
		}
	}
	return out
}
