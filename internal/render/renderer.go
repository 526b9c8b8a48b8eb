// Package render paints match snapshots onto a 2D canvas and paces frame
// production. It is a pure reader: nothing here ever mutates game state.
package render

import (
	"fmt"
	"image"
	"strings"

	"paddle-arena/internal/config"
	"paddle-arena/internal/game"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Court palette.
var (
	colorBackground = [3]float64{0.05, 0.07, 0.12}
	colorNet        = [3]float64{0.35, 0.40, 0.50}
	colorPlayer     = [3]float64{0.30, 0.85, 0.95}
	colorOpponent   = [3]float64{0.95, 0.55, 0.25}
	colorBall       = [3]float64{0.96, 0.96, 0.92}
	colorText       = [3]float64{0.85, 0.88, 0.92}
	colorDim        = [3]float64{0.45, 0.48, 0.55}
)

// Renderer draws one frame per snapshot onto an owned gg context. Not safe
// for concurrent use; the frame loop is its only caller.
type Renderer struct {
	dc    *gg.Context
	court config.Court
	face  font.Face
}

// NewRenderer creates a renderer for the given court. fontPath may point to a
// TTF for the scoreboard; when empty or unloadable the built-in bitmap face
// is used so rendering never depends on an asset being present.
func NewRenderer(court config.Court, fontPath string, fontSize float64) *Renderer {
	r := &Renderer{
		dc:    gg.NewContext(int(court.Width), int(court.Height)),
		court: court,
		face:  basicfont.Face7x13,
	}

	if fontPath != "" {
		if err := r.dc.LoadFontFace(fontPath, fontSize); err == nil {
			r.face = nil // The context keeps the loaded face
		}
	}
	if r.face != nil {
		r.dc.SetFontFace(r.face)
	}

	return r
}

// Render paints the snapshot and returns the finished frame. The returned
// image is only valid until the next Render call.
func (r *Renderer) Render(snap *game.MatchSnapshot) image.Image {
	dc := r.dc

	r.drawCourt()
	r.drawPaddles(snap)
	r.drawBall(snap)
	r.drawScoreboard(snap)
	r.drawOverlays(snap)

	return dc.Image()
}

func (r *Renderer) drawCourt() {
	dc := r.dc
	w, h := r.court.Width, r.court.Height

	dc.SetRGB(colorBackground[0], colorBackground[1], colorBackground[2])
	dc.Clear()

	// Dashed net down the middle.
	dc.SetRGB(colorNet[0], colorNet[1], colorNet[2])
	dc.SetLineWidth(3)
	dc.SetDash(12, 10)
	dc.DrawLine(r.court.NetX, 0, r.court.NetX, h)
	dc.Stroke()
	dc.SetDash()

	// Top and bottom court lines.
	dc.SetLineWidth(2)
	dc.DrawLine(0, 1, w, 1)
	dc.DrawLine(0, h-1, w, h-1)
	dc.Stroke()
}

func (r *Renderer) drawPaddles(snap *game.MatchSnapshot) {
	dc := r.dc
	c := r.court

	dc.SetRGB(colorPlayer[0], colorPlayer[1], colorPlayer[2])
	dc.DrawRoundedRectangle(c.PaddleMargin, snap.PlayerY, c.PaddleWidth, c.PaddleHeight, 4)
	dc.Fill()

	dc.SetRGB(colorOpponent[0], colorOpponent[1], colorOpponent[2])
	dc.DrawRoundedRectangle(c.OpponentFaceX(), snap.OpponentY, c.PaddleWidth, c.PaddleHeight, 4)
	dc.Fill()
}

func (r *Renderer) drawBall(snap *game.MatchSnapshot) {
	dc := r.dc

	// Soft halo makes a fast ball easier to follow on compressed frames.
	dc.SetRGBA(colorBall[0], colorBall[1], colorBall[2], 0.25)
	dc.DrawCircle(snap.BallX, snap.BallY, r.court.BallRadius*1.8)
	dc.Fill()

	dc.SetRGB(colorBall[0], colorBall[1], colorBall[2])
	dc.DrawCircle(snap.BallX, snap.BallY, r.court.BallRadius)
	dc.Fill()
}

func (r *Renderer) drawScoreboard(snap *game.MatchSnapshot) {
	dc := r.dc
	c := r.court

	dc.SetRGB(colorText[0], colorText[1], colorText[2])
	dc.DrawStringAnchored(fmt.Sprintf("%d", snap.ScorePlayer), c.NetX-60, 34, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d", snap.ScoreOpponent), c.NetX+60, 34, 0.5, 0.5)

	// Serve marker: a dot under the serving side's score.
	markerX := c.NetX - 60.0
	if snap.Server == game.SideOpponent {
		markerX = c.NetX + 60.0
	}
	dc.DrawCircle(markerX, 52, 4)
	dc.Fill()

	dc.SetRGB(colorDim[0], colorDim[1], colorDim[2])
	dc.DrawStringAnchored(strings.ToUpper(snap.Difficulty), c.NetX, c.Height-18, 0.5, 0.5)
}

func (r *Renderer) drawOverlays(snap *game.MatchSnapshot) {
	dc := r.dc
	c := r.court

	switch {
	case snap.Phase == game.PhaseMatchOver:
		winner := "PLAYER"
		if snap.ScoreOpponent > snap.ScorePlayer {
			winner = "OPPONENT"
		}
		r.banner(fmt.Sprintf("MATCH OVER - %s WINS %d-%d", winner, snap.ScorePlayer, snap.ScoreOpponent))

	case snap.Paused:
		r.banner("PAUSED")

	case snap.Phase == game.PhaseServing && snap.FreezeLeft > 0:
		dc.SetRGB(colorText[0], colorText[1], colorText[2])
		dc.DrawStringAnchored(fmt.Sprintf("%s SERVES", strings.ToUpper(snap.Server.String())), c.NetX, c.Height/2-40, 0.5, 0.5)
	}
}

// banner dims the court and centers a message over it.
func (r *Renderer) banner(msg string) {
	dc := r.dc
	c := r.court

	dc.SetRGBA(0, 0, 0, 0.55)
	dc.DrawRectangle(0, c.Height/2-36, c.Width, 72)
	dc.Fill()

	dc.SetRGB(colorText[0], colorText[1], colorText[2])
	dc.DrawStringAnchored(msg, c.NetX, c.Height/2, 0.5, 0.5)
}
