package seeds

// ColorKey is a seeded reference color
type ColorKey struct {
	KeyNumber string
	ColorName string
	R, G, B   int
	Hex       string
}

// TcgTheme is a seeded theme; ColorKey names the key number it links to
type TcgTheme struct {
	ThemeKey     string
	ThemeName    string
	Fill         string
	Transparency string
	Border       string
	Weight       string
	ExcelFill    string
	ExcelText    string
	ColorKey     string
}

// ColorKeys is the standard TCG palette
var ColorKeys = []ColorKey{
	{"1", "TCG Red", 255, 0, 0, "#FF0000"},
	{"2", "TCG Blue", 0, 102, 255, "#0066FF"},
	{"3", "Carbon Gray Dark", 58, 56, 56, "#3A3838"},
	{"4", "TCG Red Dark", 191, 0, 0, "#BF0000"},
	{"5", "TCG Orange", 255, 171, 101, "#FFAB65"},
	{"6", "TCG Green", 179, 255, 196, "#B3FFC4"},
	{"7", "TCG Cyan", 57, 255, 255, "#39FFFF"},
	{"8", "TCG Purple", 92, 0, 184, "#5C00B8"},
	{"9", "Pink", 255, 71, 207, "#FF47CF"},
	{"10", "Forest Green", 76, 122, 29, "#4C7A1D"},
	{"11", "Astronaut Blue", 5, 74, 99, "#054A63"},
	{"12", "Brown", 148, 112, 60, "#94703C"},
	{"13", "Yellow", 255, 255, 153, "#FFFF99"},
	{"14", "Carbon Gray", 117, 113, 113, "#757171"},
	{"15", "Rust", 142, 47, 0, "#8E2F00"},
	{"16", "TCG Green Dark", 0, 191, 44, "#00BF2C"},
	{"17", "TCG Purple Dark", 92, 0, 184, "#5C00B8"},
	{"18", "TCG Blue Dark", 0, 51, 128, "#003380"},
	{"19", "TCG Cyan Dark", 0, 155, 155, "#009B9B"},
	{"20", "Rust Dark", 92, 31, 0, "#5C1F00"},
	{"21", "Carbon Gray Light", 174, 170, 170, "#AEAAAA"},
	{"22", "Gray Light", 242, 242, 242, "#F2F2F2"},
	{"23", "Black", 0, 0, 0, "#000000"},
	{"24", "White", 255, 255, 255, "#FFFFFF"},
	{"25", "TCG Orange Light", 255, 204, 162, "#FFCCA2"},
	{"26", "TCG Green Light", 204, 255, 216, "#CCFFD8"},
	{"27", "TCG Cyan Light", 174, 255, 255, "#AEFFFF"},
	{"28", "TCG Purple Light", 157, 62, 253, "#9D3EFD"},
	{"29", "Pink Light", 252, 178, 236, "#FCB2EC"},
	{"30", "Forest Green Light", 111, 179, 43, "#6FB32B"},
	{"31", "Astronaut Blue Light", 8, 124, 167, "#087CA7"},
	{"32", "Brown Light", 209, 182, 143, "#D1B68F"},
	{"33", "Yellow Light", 255, 255, 217, "#FFFFD9"},
}

// TcgThemes are the standard map themes A through X
var TcgThemes = []TcgTheme{
	{"A", "CMA", "Yes", "65%", "No", "-", "1", "White", "1"},
	{"B", "PMA", "No", "-", "Yes", "3", "2", "White", "2"},
	{"C", "Subject MSA", "No", "-", "Yes", "3", "3", "White", "3"},
	{"D", "Micro-Market (Sub-CMA)", "Yes", "65%", "No", "-", "4", "White", "4"},
	{"E", "Submarket 1", "Yes", "65%", "No", "-", "25", "Black", "5"},
	{"F", "Submarket 2", "Yes", "65%", "No", "-", "26", "Black", "6"},
	{"G", "Submarket 3", "Yes", "65%", "No", "-", "27", "Black", "7"},
	{"H", "Submarket 4", "Yes", "65%", "No", "-", "28", "Black", "8"},
	{"I", "Submarket 5", "Yes", "65%", "No", "-", "29", "Black", "9"},
	{"J", "Submarket 6", "Yes", "65%", "No", "-", "30", "Black", "10"},
	{"K", "Submarket 7", "Yes", "65%", "No", "-", "31", "Black", "11"},
	{"L", "Submarket 8", "Yes", "65%", "No", "-", "32", "Black", "12"},
	{"M", "Submarket 9", "Yes", "65%", "No", "-", "33", "Black", "13"},
	{"N", "Submarket 10", "Yes", "65%", "No", "-", "14", "White", "14"},
	{"O", "Submarket 11", "Yes", "65%", "No", "-", "15", "White", "15"},
	{"P", "Submarket 12", "Yes", "65%", "No", "-", "16", "Black", "16"},
	{"Q", "Submarket 13", "Yes", "65%", "No", "-", "17", "White", "17"},
	{"R", "Submarket 14", "Yes", "65%", "No", "-", "18", "White", "18"},
	{"S", "Submarket 15", "Yes", "65%", "No", "-", "19", "White", "19"},
	{"T", "Submarket 16", "Yes", "65%", "No", "-", "20", "White", "20"},
	{"U", "MSA 1", "No", "-", "Yes", "2 or 3", "21", "White", "21"},
	{"V", "MSA 2", "No", "-", "Yes", "2 or 3", "22", "Black", "22"},
	{"W", "MSA 3", "No", "-", "Yes", "2 or 3", "23", "White", "23"},
	{"X", "MSA 4", "No", "-", "Yes", "2 or 3", "24", "Black", "24"},
}
