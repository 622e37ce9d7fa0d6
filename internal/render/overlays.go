package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/route2video/internal/anim"
)

func (c *Canvas) drawTitleCard(dc *gg.Context, o anim.Overlay) {
	w, h := float64(c.w), float64(c.h)
	a := o.Opacity

	// Dim the whole map so the card reads like an opening slate.
	dc.SetColor(color.NRGBA{R: 0x10, G: 0x18, B: 0x20, A: uint8(a * 168)})
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetFontFace(c.faces.face(h/12, true))
	dc.SetColor(white(a))
	dc.DrawStringAnchored(o.Title, w/2, h*0.42, 0.5, 0.5)

	if o.Subtitle != "" {
		dc.SetFontFace(c.faces.face(h/26, false))
		dc.SetColor(white(a * 0.92))
		dc.DrawStringAnchored(o.Subtitle, w/2, h*0.42+h/9, 0.5, 0.5)
	}
}

func (c *Canvas) drawStamp(dc *gg.Context, o anim.Overlay) {
	if o.Title == "" {
		return
	}
	size := float64(c.h) / 28
	dc.SetFontFace(c.faces.face(size, true))
	tw, th := dc.MeasureString(o.Title)

	x := float64(c.w) - tw/2 - size*2.2
	y := size * 2.2
	ink := color.NRGBA{R: 0xc0, G: 0x39, B: 0x2b, A: uint8(o.Opacity * 208)}

	dc.Push()
	dc.RotateAbout(gg.Radians(-6), x, y)
	dc.SetColor(ink)
	dc.SetLineWidth(2.5)
	dc.DrawRoundedRectangle(x-tw/2-12, y-th/2-8, tw+24, th+16, 6)
	dc.Stroke()
	dc.DrawStringAnchored(o.Title, x, y, 0.5, 0.35)
	dc.Pop()
}

func (c *Canvas) drawEndCard(dc *gg.Context, o anim.Overlay) {
	w, h := float64(c.w), float64(c.h)
	a := o.Opacity

	cardW := w * 0.44
	cardH := h * 0.17
	qr := c.qrImage(int(cardH * 0.72))
	if qr != nil {
		cardW += cardH * 0.8
	}
	x := (w - cardW) / 2
	y := h * 0.71
	textCX := x + cardW/2
	if qr != nil {
		textCX -= cardH * 0.4
	}

	dc.SetColor(white(a * 0.93))
	dc.DrawRoundedRectangle(x, y, cardW, cardH, 14)
	dc.Fill()
	dc.SetColor(hexColor("#e74c3c", a))
	dc.DrawRectangle(x, y, cardW, 5)
	dc.Fill()

	dc.SetFontFace(c.faces.face(cardH*0.30, true))
	dc.SetColor(hexColor("#1c2833", a))
	dc.DrawStringAnchored(o.Title, textCX, y+cardH*0.40, 0.5, 0.5)

	if o.Subtitle != "" {
		dc.SetFontFace(c.faces.face(cardH*0.17, false))
		dc.SetColor(hexColor("#566573", a))
		dc.DrawStringAnchored(o.Subtitle, textCX, y+cardH*0.74, 0.5, 0.5)
	}

	// The QR has no alpha channel to fade with, so it joins once the card
	// has settled.
	if qr != nil && a >= 0.95 {
		side := qr.Bounds().Dx()
		dc.DrawImage(qr, int(x+cardW)-side-14, int(y)+(int(cardH)-side)/2)
	}
}

func (c *Canvas) qrImage(side int) image.Image {
	if c.ShareURL == "" || side <= 0 {
		return nil
	}
	if c.qr == nil {
		q, err := qrcode.New(c.ShareURL, qrcode.Medium)
		if err != nil {
			c.log.Warn("qr generation failed", "url", c.ShareURL, "err", err)
			c.ShareURL = ""
			return nil
		}
		c.qr = q.Image(side)
	}
	return c.qr
}
