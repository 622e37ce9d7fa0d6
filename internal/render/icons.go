package render

import (
	"github.com/fogleman/gg"

	"github.com/ivlev/route2video/internal/icon"
)

// drawIconArt paints a traveler sprite centered on the origin, facing +x.
// The caller has already applied position, rotation and mirroring.
func drawIconArt(dc *gg.Context, kind icon.Kind, s, a float64) {
	// Soft badge so the sprite stays readable over any tile.
	dc.SetColor(white(a * 0.75))
	dc.DrawCircle(0, 0, s*0.62)
	dc.Fill()

	switch kind {
	case icon.KindCar:
		drawCar(dc, s, a)
	case icon.KindBus:
		drawBus(dc, s, a)
	case icon.KindCyclist:
		drawCyclist(dc, s, a)
	case icon.KindBoat:
		drawBoat(dc, s, a)
	case icon.KindWalker:
		drawWalker(dc, s, a, false)
	case icon.KindBackpacker:
		drawWalker(dc, s, a, true)
	}
}

func drawCar(dc *gg.Context, s, a float64) {
	dc.SetColor(hexColor("#2980b9", a))
	dc.DrawRoundedRectangle(-s*0.50, -s*0.22, s, s*0.38, s*0.10)
	dc.Fill()
	dc.DrawRoundedRectangle(-s*0.28, -s*0.44, s*0.52, s*0.28, s*0.08)
	dc.Fill()

	dc.SetColor(hexColor("#d6eaf8", a))
	dc.DrawRectangle(-s*0.21, -s*0.38, s*0.17, s*0.16)
	dc.DrawRectangle(s*0.01, -s*0.38, s*0.17, s*0.16)
	dc.Fill()

	dc.SetColor(hexColor("#f7dc6f", a))
	dc.DrawCircle(s*0.47, -s*0.10, s*0.05)
	dc.Fill()

	drawWheels(dc, s, a, -s*0.28, s*0.28, s*0.20)
}

func drawBus(dc *gg.Context, s, a float64) {
	dc.SetColor(hexColor("#d35400", a))
	dc.DrawRoundedRectangle(-s*0.52, -s*0.34, s*1.04, s*0.56, s*0.08)
	dc.Fill()

	dc.SetColor(hexColor("#fdebd0", a))
	for i := 0; i < 4; i++ {
		x := -s*0.44 + float64(i)*s*0.24
		dc.DrawRectangle(x, -s*0.26, s*0.17, s*0.18)
	}
	dc.Fill()

	drawWheels(dc, s, a, -s*0.32, s*0.32, s*0.24)
}

func drawWheels(dc *gg.Context, s, a, x1, x2, y float64) {
	dc.SetColor(hexColor("#1c2833", a))
	dc.DrawCircle(x1, y, s*0.13)
	dc.DrawCircle(x2, y, s*0.13)
	dc.Fill()
	dc.SetColor(hexColor("#aab7b8", a))
	dc.DrawCircle(x1, y, s*0.05)
	dc.DrawCircle(x2, y, s*0.05)
	dc.Fill()
}

func drawCyclist(dc *gg.Context, s, a float64) {
	dc.SetColor(hexColor("#1c2833", a))
	dc.SetLineWidth(s * 0.07)
	dc.DrawCircle(-s*0.28, s*0.24, s*0.20)
	dc.DrawCircle(s*0.28, s*0.24, s*0.20)
	dc.Stroke()

	// Frame
	dc.MoveTo(-s*0.28, s*0.24)
	dc.LineTo(0, s*0.24)
	dc.LineTo(s*0.28, s*0.24)
	dc.MoveTo(-s*0.05, s*0.24)
	dc.LineTo(s*0.20, -s*0.04)
	dc.MoveTo(-s*0.28, s*0.24)
	dc.LineTo(-s*0.14, -s*0.02)
	dc.LineTo(s*0.20, -s*0.04)
	dc.Stroke()

	// Rider
	dc.SetColor(hexColor("#27ae60", a))
	dc.SetLineWidth(s * 0.09)
	dc.MoveTo(-s*0.10, s*0.10)
	dc.LineTo(s*0.06, -s*0.26)
	dc.LineTo(s*0.24, -s*0.10)
	dc.Stroke()
	dc.DrawCircle(s*0.10, -s*0.40, s*0.11)
	dc.Fill()
}

func drawBoat(dc *gg.Context, s, a float64) {
	dc.SetColor(hexColor("#2c3e50", a))
	dc.MoveTo(-s*0.50, s*0.10)
	dc.LineTo(s*0.50, s*0.10)
	dc.LineTo(s*0.30, s*0.34)
	dc.LineTo(-s*0.34, s*0.34)
	dc.ClosePath()
	dc.Fill()

	dc.SetLineWidth(s * 0.05)
	dc.MoveTo(0, s*0.10)
	dc.LineTo(0, -s*0.48)
	dc.Stroke()

	dc.SetColor(hexColor("#ecf0f1", a))
	dc.MoveTo(s*0.04, -s*0.46)
	dc.LineTo(s*0.42, s*0.02)
	dc.LineTo(s*0.04, s*0.02)
	dc.ClosePath()
	dc.Fill()
}

func drawWalker(dc *gg.Context, s, a float64, backpack bool) {
	body := "#e67e22"
	if backpack {
		body = "#c0392b"
	}

	if backpack {
		dc.SetColor(hexColor("#7d6608", a))
		dc.DrawRoundedRectangle(-s*0.34, -s*0.26, s*0.22, s*0.34, s*0.06)
		dc.Fill()
	}

	dc.SetColor(hexColor(body, a))
	dc.SetLineWidth(s * 0.11)
	// Torso
	dc.MoveTo(-s*0.04, -s*0.18)
	dc.LineTo(s*0.02, s*0.12)
	dc.Stroke()
	// Legs mid-stride
	dc.MoveTo(s*0.02, s*0.12)
	dc.LineTo(s*0.22, s*0.44)
	dc.MoveTo(s*0.02, s*0.12)
	dc.LineTo(-s*0.16, s*0.44)
	dc.Stroke()
	// Arm
	dc.MoveTo(-s*0.02, -s*0.10)
	dc.LineTo(s*0.18, s*0.06)
	dc.Stroke()

	dc.DrawCircle(-s*0.06, -s*0.34, s*0.13)
	dc.Fill()

	if backpack {
		// Hiking pole
		dc.SetColor(hexColor("#616a6b", a))
		dc.SetLineWidth(s * 0.05)
		dc.MoveTo(s*0.18, s*0.06)
		dc.LineTo(s*0.30, s*0.46)
		dc.Stroke()
	}
}
