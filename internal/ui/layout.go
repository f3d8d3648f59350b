package ui

import "image"

// Screen layout for the 320x240 landscape panel.
const (
	headerY    = 5
	headerH    = 25
	dataAreaY  = 40
	dataLabelX = 15
	dataValueX = 160
	dataRowH   = 30
	rightEdge  = 310

	logTitleY = 8
	logAreaY  = 35
	logRowH   = 20
	logTimeX  = 15
	logTypeX  = 120
)

// Touch targets.
var (
	FanButton  = image.Rect(10, 190, 155, 230)
	LogButton  = image.Rect(165, 190, rightEdge, 230)
	BackButton = image.Rect(10, 200, 110, 235)
)

var (
	clockBox   = image.Rect(dataValueX, headerY, rightEdge, headerY+headerH)
	valueArea  = image.Rect(dataValueX, dataAreaY, rightEdge, dataAreaY+5*dataRowH)
	logArea    = image.Rect(0, logAreaY, rightEdge+10, BackButton.Min.Y-2)
	popupRect  = image.Rect(40, 80, 280, 160)
	sensorRows = [...]string{
		"Proximity:",
		"Amb Light:",
		"White Light:",
		"Temp (C):",
		"Humidity (%):",
	}
)

// centerText returns the top-left point that centres a box of size in r.
func centerText(r image.Rectangle, size image.Point) image.Point {
	return image.Pt(r.Min.X+(r.Dx()-size.X)/2, r.Min.Y+(r.Dy()-size.Y)/2)
}
