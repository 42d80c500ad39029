package catalog

// FilterState хранит выбранные пользователем фильтры.
// Смена категории сбрасывает подкатегорию в All: движок (Query) об этой связи не знает.
type FilterState struct {
	category    string
	subcategory string
	search      string
}

func NewFilterState() *FilterState {
	return &FilterState{category: All, subcategory: All}
}

// SetCategory выбирает категорию; при фактической смене подкатегория возвращается к All.
func (s *FilterState) SetCategory(category string) {
	if IsAll(category) {
		category = All
	}
	if category == s.category {
		return
	}

	s.category = category
	s.subcategory = All
}

func (s *FilterState) SetSubcategory(subcategory string) {
	if IsAll(subcategory) {
		subcategory = All
	}
	s.subcategory = subcategory
}

func (s *FilterState) SetSearch(term string) {
	s.search = term
}

// Reset — «Limpar filtros».
func (s *FilterState) Reset() {
	*s = *NewFilterState()
}

func (s *FilterState) Filter() Filter {
	return Filter{
		Category:    s.category,
		Subcategory: s.subcategory,
		Search:      s.search,
	}
}
