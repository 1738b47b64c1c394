// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the bookshelf browser.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Selected row
  - Cyan - Brand, column headers, command prompt
  - Emerald - Success messages and the filter badge
  - Amber - Sort badge
  - Rose - Errors

Status messages carry an ASCII indicator ([OK], [X], [i]) so they read
without color.

# Theme System (theme.go)

	theme := styles.NewTheme()
	renderer, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))
*/
package styles
