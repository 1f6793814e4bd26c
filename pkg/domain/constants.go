package domain

// Property keys with meaning to the designer. They are also the JSON field names used at the
// load/save boundary.
const (
	// PropPanels, PropSteps and PropTabs hold the nested collection of Accordion,
	// MultiInstanceStepper and Page components respectively.
	PropPanels = "panels"
	PropSteps  = "steps"
	PropTabs   = "tabs"

	// PropIsGroup marks a Container created by the Group command.
	PropIsGroup = "isGroup"

	// PropLayout selects the layout model of a Container ("absolute", "flex" or "grid").
	PropLayout = "layout"

	// PropColumns is the number of grid columns of a Section.
	PropColumns = "columns"
)

// Container layout values.
const (
	LayoutAbsolute = "absolute"
	LayoutFlex     = "flex"
	LayoutGrid     = "grid"
)

// Definition defaults applied when a field is missing at the load boundary.
const (
	DefinitionVersion   = 1
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
	DefaultZoom         = 1.0
)
