package ui

// RenderScopePanel wraps the rendered display block with a styled border.
// The pixel rendering is done externally to avoid import cycles.
func RenderScopePanel(width, height int, scope string, listening bool) string {
	sty := StylePanelBorder
	if listening {
		sty = StylePanelActive
	}
	return sty.Width(width - 2).Height(height - 2).Render(StyleScope.Render(scope))
}
