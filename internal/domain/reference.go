package domain

import "strings"

// Fallback coordinates for cities missing from the reference table: the
// geographic centroid of India.
const (
	FallbackLat = 20.5937
	FallbackLng = 78.9629
)

// CityRef is a static city entry with its region and coordinates.
type CityRef struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// CategoryRef is a static taxonomy entry.
type CategoryRef struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

// Region names used by the reference table.
const (
	RegionNorth     = "North India"
	RegionNorthEast = "North-East India"
	RegionWest      = "West India"
	RegionSouth     = "South India"
	RegionEast      = "East India"
	RegionCentral   = "Central India"
)

// Cities is the canonical city reference table. Alternate spellings that appear
// in the sheet (Delhi/New Delhi, Bangalore/Bengaluru) are separate entries.
var Cities = []CityRef{
	{Name: "Chandigarh", Region: RegionNorth, Lat: 30.7333, Lng: 76.7794},
	{Name: "Manali", Region: RegionNorth, Lat: 32.2432, Lng: 77.1892},
	{Name: "Jaipur", Region: RegionNorth, Lat: 26.9124, Lng: 75.7873},
	{Name: "New Delhi", Region: RegionNorth, Lat: 28.6139, Lng: 77.2090},
	{Name: "Delhi", Region: RegionNorth, Lat: 28.7041, Lng: 77.1025},
	{Name: "Lucknow", Region: RegionNorth, Lat: 26.8467, Lng: 80.9462},
	{Name: "Kanpur", Region: RegionNorth, Lat: 26.4499, Lng: 80.3319},
	{Name: "Ludhiana", Region: RegionNorth, Lat: 30.9010, Lng: 75.8573},
	{Name: "Amritsar", Region: RegionNorth, Lat: 31.6340, Lng: 74.8723},
	{Name: "Srinagar", Region: RegionNorth, Lat: 34.0837, Lng: 74.7973},
	{Name: "Dehradun", Region: RegionNorth, Lat: 30.3165, Lng: 78.0322},
	{Name: "Gurgaon", Region: RegionNorth, Lat: 28.4595, Lng: 77.0266},
	{Name: "Noida", Region: RegionNorth, Lat: 28.5355, Lng: 77.3910},

	{Name: "Agartala", Region: RegionNorthEast, Lat: 23.8315, Lng: 91.2868},
	{Name: "Aizawl", Region: RegionNorthEast, Lat: 23.7271, Lng: 92.7176},
	{Name: "Kohima", Region: RegionNorthEast, Lat: 25.6701, Lng: 94.1077},
	{Name: "Dimapur", Region: RegionNorthEast, Lat: 25.9060, Lng: 93.7272},
	{Name: "Guwahati", Region: RegionNorthEast, Lat: 26.1445, Lng: 91.7362},
	{Name: "Shillong", Region: RegionNorthEast, Lat: 25.5788, Lng: 91.8933},
	{Name: "Imphal", Region: RegionNorthEast, Lat: 24.8170, Lng: 93.9368},
	{Name: "Gangtok", Region: RegionNorthEast, Lat: 27.3389, Lng: 88.6065},

	{Name: "Mumbai", Region: RegionWest, Lat: 19.0760, Lng: 72.8777},
	{Name: "Pune", Region: RegionWest, Lat: 18.5204, Lng: 73.8567},
	{Name: "Nagpur", Region: RegionWest, Lat: 21.1458, Lng: 79.0882},
	{Name: "Nashik", Region: RegionWest, Lat: 19.9975, Lng: 73.7898},
	{Name: "Ahmedabad", Region: RegionWest, Lat: 23.0225, Lng: 72.5714},
	{Name: "Surat", Region: RegionWest, Lat: 21.1702, Lng: 72.8311},
	{Name: "Vadodara", Region: RegionWest, Lat: 22.3072, Lng: 73.1812},
	{Name: "Rajkot", Region: RegionWest, Lat: 22.3039, Lng: 70.8022},
	{Name: "Goa", Region: RegionWest, Lat: 15.2993, Lng: 74.1240},
	{Name: "Panaji", Region: RegionWest, Lat: 15.4909, Lng: 73.8278},

	{Name: "Bangalore", Region: RegionSouth, Lat: 12.9716, Lng: 77.5946},
	{Name: "Bengaluru", Region: RegionSouth, Lat: 12.9716, Lng: 77.5946},
	{Name: "Chennai", Region: RegionSouth, Lat: 13.0827, Lng: 80.2707},
	{Name: "Hyderabad", Region: RegionSouth, Lat: 17.3850, Lng: 78.4867},
	{Name: "Kochi", Region: RegionSouth, Lat: 9.9312, Lng: 76.2673},
	{Name: "Thiruvananthapuram", Region: RegionSouth, Lat: 8.5241, Lng: 76.9366},
	{Name: "Coimbatore", Region: RegionSouth, Lat: 11.0168, Lng: 76.9558},
	{Name: "Visakhapatnam", Region: RegionSouth, Lat: 17.6868, Lng: 83.2185},
	{Name: "Mysore", Region: RegionSouth, Lat: 12.2958, Lng: 76.6394},

	{Name: "Kolkata", Region: RegionEast, Lat: 22.5726, Lng: 88.3639},
	{Name: "Patna", Region: RegionEast, Lat: 25.5941, Lng: 85.1376},
	{Name: "Ranchi", Region: RegionEast, Lat: 23.3441, Lng: 85.3096},
	{Name: "Bhubaneswar", Region: RegionEast, Lat: 20.2961, Lng: 85.8245},
	{Name: "Raipur", Region: RegionEast, Lat: 21.2514, Lng: 81.6296},

	{Name: "Bhopal", Region: RegionCentral, Lat: 23.2599, Lng: 77.4126},
	{Name: "Indore", Region: RegionCentral, Lat: 22.7196, Lng: 75.8577},
	{Name: "Gwalior", Region: RegionCentral, Lat: 26.2183, Lng: 78.1828},
	{Name: "Jabalpur", Region: RegionCentral, Lat: 23.1815, Lng: 79.9864},
}

// Categories is the accessory taxonomy in display order.
var Categories = []CategoryRef{
	{ID: CategorySafety, Label: "Safety", Color: "#005696"},
	{ID: CategoryEngine, Label: "Engine", Color: "#f59e0b"},
	{ID: CategoryMaintenance, Label: "Maint.", Color: "#64748b"},
	{ID: CategoryComfort, Label: "Comfort", Color: "#10b981"},
	{ID: CategoryTech, Label: "Tech", Color: "#6366f1"},
}

var (
	citiesByName     = indexCities(Cities)
	categoriesByName = indexCategories(Categories)
)

func indexCities(cities []CityRef) map[string]CityRef {
	m := make(map[string]CityRef, len(cities))
	for _, c := range cities {
		m[c.Name] = c
	}
	return m
}

func indexCategories(cats []CategoryRef) map[string]CategoryRef {
	m := make(map[string]CategoryRef, len(cats)*2)
	for _, c := range cats {
		m[strings.ToLower(c.Label)] = c
	}
	// Ids are accepted as a second spelling; labels win on collision.
	for _, c := range cats {
		key := strings.ToLower(string(c.ID))
		if _, ok := m[key]; !ok {
			m[key] = c
		}
	}
	return m
}

// LookupCity returns the reference entry for an exact city name.
func LookupCity(name string) (CityRef, bool) {
	c, ok := citiesByName[name]
	return c, ok
}

// LookupCategory resolves a category label (or id) case-insensitively.
func LookupCategory(label string) (CategoryRef, bool) {
	c, ok := categoriesByName[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// CategoryLabel returns the display label for a category id, or the id itself
// when it is not in the taxonomy.
func CategoryLabel(id Category) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return string(id)
}

// Regions returns the distinct regions of the reference table in table order.
func Regions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range Cities {
		if !seen[c.Region] {
			seen[c.Region] = true
			out = append(out, c.Region)
		}
	}
	return out
}
