package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Tool names
	ExtractEquipmentTool = "extract_equipment"
	ListDrawingsTool     = "list_drawings"
	EquipmentPaletteTool = "equipment_palette"

	ExtractEquipmentDescription = `Extract MVS and DSG switchgear from a single-line diagram PDF and write a styled spreadsheet.

**When to use:** Need the list of service (MVS) and distribution (DSG) switchgear on a drawing, with the service gear feeding each distribution lineup.

**What it returns:** Counts per type, the spreadsheet path, a summary per color and one line per item with its page, color, primary and alternate source and electrical properties.

**Examples:**
• Inventory a drawing: "Extract the equipment from sld-phase2.pdf"
• Keep a named report: "Extract equipment from E-601.pdf into e601-equipment.xlsx"

**Common workflows:**
1. Discovery: list_drawings → extract_equipment on each match
2. Review: extract_equipment → check items without a primary source → inspect the drawing

**Notes:** Service gear takes the anchor color. Distribution lineups are colored by their row and column on the drawing. Distribution lineups are fed by the first two service items on their page, reported as primary and alternate source.`

	ListDrawingsDescription = `List the PDF drawings available in the drawings directory.

**When to use:** Before extract_equipment, to find the path of a drawing.

**Examples:**
• Everything: "List the drawings"
• Filtered: "List drawings containing 'sld'"

**Notes:** Paths are relative to the drawings directory and can be passed to extract_equipment as they are. Results are capped at 200 entries.`

	EquipmentPaletteDescription = `Show the color table used to color equipment rows.

**When to use:** To explain the colors in an extracted spreadsheet or to map a color name back to its palette position.

**Notes:** The anchor color marks all service gear and the origin lineup of each drawing.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ExtractEquipmentTool: ExtractEquipmentDescription,
	ListDrawingsTool:     ListDrawingsDescription,
	EquipmentPaletteTool: EquipmentPaletteDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
