package hunt

// HomeContent is what the idle screen shows. Exactly one of InitialClue or
// LocationNames is meaningful, depending on Display.
type HomeContent struct {
	Display       HomescreenDisplay
	InitialClue   string
	LocationNames []string
}

// ResolveHome builds the home screen for p. An unknown display mode is a
// *ConfigurationError.
func ResolveHome(p Project, catalog []Location) (HomeContent, error) {
	switch p.HomescreenDisplay {
	case DisplayInitialClue:
		return HomeContent{Display: DisplayInitialClue, InitialClue: p.InitialClue}, nil
	case DisplayAllLocations:
		names := make([]string, 0, len(catalog))
		for _, l := range catalog {
			names = append(names, l.Name)
		}
		return HomeContent{Display: DisplayAllLocations, LocationNames: names}, nil
	}
	return HomeContent{}, &ConfigurationError{Field: "homescreen_display", Value: string(p.HomescreenDisplay)}
}
