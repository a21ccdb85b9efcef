package aquarium

import "unicode/utf8"

// LineSeparator joins rendered rows.
const LineSeparator = "\r\n"

// Visible resolves what a viewer sees at (row, col) given the occlusion
// order. vegetation may be nil when the tank has none.
func Visible(entities, bubbles, vegetation *Layer, row, col int, order Occlusion) Species {
	var plant Species
	if vegetation != nil {
		plant = vegetation.At(row, col)
	}
	bubble := bubbles.At(row, col)
	creature := entities.At(row, col)

	if order == OcclusionVegetationFirst && plant != Empty {
		return plant
	}
	if bubble != Empty {
		return bubble
	}
	if creature != Empty {
		return creature
	}
	return plant
}

// AppendFrame appends the frame body for the given layers to dst: one line
// per row, one glyph per column, lines joined by CRLF with no trailing
// separator.
func AppendFrame(dst []byte, entities, bubbles, vegetation *Layer, order Occlusion) []byte {
	rows, cols := entities.Rows, entities.Cols
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			dst = append(dst, Visible(entities, bubbles, vegetation, row, col, order).Glyph()...)
		}
		if row < rows-1 {
			dst = append(dst, LineSeparator...)
		}
	}
	return dst
}

// Frame renders the layers into a string.
func Frame(entities, bubbles, vegetation *Layer, order Occlusion) string {
	return string(AppendFrame(nil, entities, bubbles, vegetation, order))
}

// FrameSize estimates the byte length of a frame so buffers can be sized once.
func FrameSize(rows, cols int) int {
	return rows*cols*utf8.UTFMax*2 + max(rows-1, 0)*len(LineSeparator)
}
