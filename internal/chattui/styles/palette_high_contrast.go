package styles

// HighContrastTheme maximizes legibility on washed-out terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "255",
	},
	Message: MessageColors{
		Own:   "51",
		Other: "226",
	},
	Chrome: ChromeColors{
		Header:       "21",
		Footer:       "18",
		SelectedItem: "51",
		UnreadBadge:  "196",
		ErrorBanner:  "196",
	},
}
