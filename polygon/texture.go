package polygon

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TexParams describes how a flat texture is mapped onto a sector: scale,
// offset and rotation (degrees) in map space, and the texture size in pixels.
type TexParams struct {
	ScaleX, ScaleY   float64
	OffsetX, OffsetY float64
	Rotation         float64
	Width, Height    float64
}

// DefaultTexParams maps a 64x64 flat one pixel per map unit.
func DefaultTexParams() TexParams {
	return TexParams{ScaleX: 1, ScaleY: 1, Width: 64, Height: 64}
}

func (tp TexParams) normalized() TexParams {
	if tp.ScaleX == 0 {
		tp.ScaleX = 1
	}
	if tp.ScaleY == 0 {
		tp.ScaleY = 1
	}
	if tp.Width <= 0 {
		tp.Width = 64
	}
	if tp.Height <= 0 {
		tp.Height = 64
	}
	return tp
}

// Matrix returns the 3x3 homogeneous transform from map space to texture
// space: rotate, flip y and shift by the scaled offset, then divide by the
// scaled texture size.
func (tp TexParams) Matrix() *mat.Dense {
	tp = tp.normalized()

	rad := tp.Rotation * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	rotate := mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
	shift := mat.NewDense(3, 3, []float64{
		1, 0, tp.ScaleX * tp.OffsetX,
		0, -1, tp.ScaleY * tp.OffsetY,
		0, 0, 1,
	})
	scale := mat.NewDense(3, 3, []float64{
		1 / tp.ScaleX / tp.Width, 0, 0,
		0, 1 / tp.ScaleY / tp.Height, 0,
		0, 0, 1,
	})

	var shifted, out mat.Dense
	shifted.Mul(shift, rotate)
	out.Mul(scale, &shifted)
	return &out
}

// UpdateTextureCoords recomputes TX/TY of every vertex.
func (p *Polygon) UpdateTextureCoords(tp TexParams) {
	p.tex = tp
	m := tp.Matrix()
	for si := range p.subs {
		verts := p.subs[si].Vertices
		for i := range verts {
			x, y := verts[i].X, verts[i].Y
			verts[i].TX = m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2)
			verts[i].TY = m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)
		}
	}
}

// TexParams returns the parameters of the last texture coordinate update.
func (p *Polygon) TexParams() TexParams {
	return p.tex
}
