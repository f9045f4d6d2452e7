package domain

import "math/rand/v2"

// Title sets for each rank band. The pick is uniform and re-rolled on every
// recomputation, so a user's title may change even when their rank does not.
var (
	fatLeaderTitles = []string{
		"Mega Fatlord", "Titan of the Feast", "God of Gravity", "Big Boss",
		"King of the Buffet", "Lord of Lard", "Master of Mass",
		"Supreme Heavyweight", "Emperor of Excess", "Chief Chonk",
	}
	skinnyLeaderTitles = []string{
		"Walking Stick", "Ghost", "Made of Air", "Absolute Zero",
		"The Void", "Nothing at All", "Quantum Featherweight", "Shadow",
		"Paper Sheet", "Dust in the Wind",
	}
	fatTitles = []string{
		"Piggy", "Blob", "Food Lover", "Sofa Dweller", "Mass Monster",
		"Burger Fan", "Heavyweight Champ", "Ham Planet", "Mayo Enjoyer",
		"Chunky",
	}
	skinnyTitles = []string{
		"Stick", "Wind Rider", "Bag of Bones", "Dried Out", "Zero Mass",
		"Leaf", "Matchstick", "Noodle", "Garden Snake", "Dusty",
	}
	middleTitles = []string{
		"Perfectly Normal", "Chad", "Sigma", "Based", "Office Boss",
		"Gym King", "Flex Machine", "Alpha", "Giga Regular", "Top Shape",
	}
)

// TitlePicker picks rank titles. The random pick function is injected so
// tests can substitute a deterministic one.
type TitlePicker struct {
	intn func(n int) int
}

// NewTitlePicker returns a picker backed by the process-wide random source.
func NewTitlePicker() *TitlePicker {
	return &TitlePicker{intn: rand.IntN}
}

// NewTitlePickerFunc returns a picker using intn to choose an index in [0, n).
func NewTitlePickerFunc(intn func(n int) int) *TitlePicker {
	return &TitlePicker{intn: intn}
}

// Pick returns a title for a user at the 1-based position among total ranked
// users, given their BMI. The first place rule wins over the last place rule,
// so a single-user chat always gets a fat-leader title.
func (p *TitlePicker) Pick(position, total int, bmi float64) string {
	var set []string
	switch {
	case position == 1:
		set = fatLeaderTitles
	case position == total:
		set = skinnyLeaderTitles
	case bmi > 25:
		set = fatTitles
	case bmi < 18.5:
		set = skinnyTitles
	default:
		set = middleTitles
	}
	return set[p.intn(len(set))]
}
