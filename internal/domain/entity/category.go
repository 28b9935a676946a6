package entity

// Islands of the Comoros archipelago, as stored in Product.LocationIsland and
// Profile.Island.
const (
	IslandNgazidja = "ngazidja"
	IslandNdzuwani = "ndzuwani"
	IslandMwali    = "mwali"
	IslandMaore    = "maore"
)

var Islands = []string{IslandNgazidja, IslandNdzuwani, IslandMwali, IslandMaore}

func IsIsland(value string) bool {
	for _, island := range Islands {
		if island == value {
			return true
		}
	}
	return false
}

type Category struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	SubCategories []string `json:"sub_categories,omitempty"`
}

var Categories = []Category{
	{ID: "vehicules", Label: "Véhicules", SubCategories: []string{"voitures", "motos", "pieces"}},
	{ID: "immobilier", Label: "Immobilier", SubCategories: []string{"ventes", "locations", "terrains"}},
	{ID: "electronique", Label: "Électronique", SubCategories: []string{"telephones", "ordinateurs", "tv-audio"}},
	{ID: "maison", Label: "Maison", SubCategories: []string{"meubles", "electromenager", "decoration"}},
	{ID: "mode", Label: "Mode", SubCategories: []string{"vetements", "chaussures", "accessoires"}},
	{ID: "emploi", Label: "Emploi", SubCategories: []string{"offres", "demandes"}},
	{ID: "services", Label: "Services"},
	{ID: "autres", Label: "Autres"},
}

// FindCategory looks a category up by id.
func FindCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HasSubCategory reports whether sub belongs to the category. An empty sub
// category is always accepted.
func (c Category) HasSubCategory(sub string) bool {
	if sub == "" {
		return true
	}
	for _, s := range c.SubCategories {
		if s == sub {
			return true
		}
	}
	return false
}
