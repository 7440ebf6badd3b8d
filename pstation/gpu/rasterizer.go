package gpu

// vertex is a rasterizer-space point with its interpolated color and
// texture attributes already resolved from a GP0 polygon/rectangle
// command.
type vertex struct {
	x, y    int32
	r, g, b uint8
	u, v    uint8
}

// primOpts carries the per-primitive flags and texture-page state the
// shading/sampling path needs, resolved once before rasterizing.
type primOpts struct {
	textured        bool
	semiTransparent bool
	rawTexture      bool
	forceMask       bool
	texDepth        uint8
	texPageX        uint8
	texPageY        uint8
	clutX, clutY    uint16
	blendMode       uint8
}

func (g *GPU) drawPolygon(words []uint32, op uint8) {
	quad := op&0x08 != 0
	shaded := op&0x10 != 0
	textured := op&0x04 != 0
	semiTransparent := op&0x02 != 0
	rawTexture := op&0x01 != 0

	count := 3
	if quad {
		count = 4
	}

	vs := make([]vertex, count)
	color := words[0]
	idx := 1
	var clutX, clutY uint16
	texPageX, texPageY, texDepth := g.texPageBaseX, g.texPageBaseY, g.texPageDepth

	for i := 0; i < count; i++ {
		if i > 0 && shaded {
			color = words[idx]
			idx++
		}
		x, y := decodeVertexXY(words[idx])
		idx++
		vs[i] = vertex{
			x: x + g.drawOffsetX,
			y: y + g.drawOffsetY,
			r: uint8(color), g: uint8(color >> 8), b: uint8(color >> 16),
		}
		if textured {
			tc := words[idx]
			idx++
			vs[i].u = uint8(tc)
			vs[i].v = uint8(tc >> 8)
			switch i {
			case 0:
				clutX = uint16((tc>>16)&0x3F) * 16
				clutY = uint16((tc >> 22) & 0x1FF)
			case 1:
				// The second texcoord word's high half is the texture
				// page attribute; it updates draw mode as a side
				// effect, same as a real GP0(0xE1) write.
				g.setDrawMode((tc >> 16) & 0xFFFF)
				texPageX, texPageY, texDepth = g.texPageBaseX, g.texPageBaseY, g.texPageDepth
			}
		}
	}

	opts := primOpts{
		textured: textured, semiTransparent: semiTransparent, rawTexture: rawTexture,
		texDepth: texDepth, texPageX: texPageX, texPageY: texPageY,
		clutX: clutX, clutY: clutY, blendMode: g.semiTransparency, forceMask: g.forceSetMask,
	}

	g.fillTriangle([3]vertex{vs[0], vs[1], vs[2]}, opts)
	if quad {
		g.fillTriangle([3]vertex{vs[1], vs[2], vs[3]}, opts)
	}
}

func min3(a, b, c int32) int32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int32) int32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

type point struct{ x, y int32 }

// isTopLeft implements the fill-rule tiebreak for an edge from a to b:
// a horizontal top edge running leftward, or any left edge.
func isTopLeft(a, b point) bool {
	if a.y == b.y {
		return b.x < a.x
	}
	return b.y < a.y
}

// fillTriangle rasterizes one triangle via edge functions, discarding
// degenerate or wrapped-around triangles per the rasterizer's clipping
// contract.
func (g *GPU) fillTriangle(v [3]vertex, opts primOpts) {
	area := int64(v[1].x-v[0].x)*int64(v[2].y-v[0].y) - int64(v[1].y-v[0].y)*int64(v[2].x-v[0].x)
	if area == 0 {
		return
	}
	if area < 0 {
		v[1], v[2] = v[2], v[1]
		area = -area
	}

	minX := min3(v[0].x, v[1].x, v[2].x)
	maxX := max3(v[0].x, v[1].x, v[2].x)
	minY := min3(v[0].y, v[1].y, v[2].y)
	maxY := max3(v[0].y, v[1].y, v[2].y)
	if maxX-minX > 1024 || maxY-minY > 512 {
		return
	}

	if minX < int32(g.drawAreaLeft) {
		minX = int32(g.drawAreaLeft)
	}
	if minY < int32(g.drawAreaTop) {
		minY = int32(g.drawAreaTop)
	}
	if maxX > int32(g.drawAreaRight) {
		maxX = int32(g.drawAreaRight)
	}
	if maxY > int32(g.drawAreaBottom) {
		maxY = int32(g.drawAreaBottom)
	}

	p0, p1, p2 := point{v[0].x, v[0].y}, point{v[1].x, v[1].y}, point{v[2].x, v[2].y}
	bias0, bias1, bias2 := int64(0), int64(0), int64(0)
	if !isTopLeft(p1, p2) {
		bias0 = -1
	}
	if !isTopLeft(p2, p0) {
		bias1 = -1
	}
	if !isTopLeft(p0, p1) {
		bias2 = -1
	}

	a12, b12 := int64(v[1].y-v[2].y), int64(v[2].x-v[1].x)
	a20, b20 := int64(v[2].y-v[0].y), int64(v[0].x-v[2].x)
	a01, b01 := int64(v[0].y-v[1].y), int64(v[1].x-v[0].x)

	edgeAt := func(a, b point, px, py int32) int64 {
		return int64(b.x-a.x)*int64(py-a.y) - int64(b.y-a.y)*int64(px-a.x)
	}

	w0Row := edgeAt(p1, p2, minX, minY)
	w1Row := edgeAt(p2, p0, minX, minY)
	w2Row := edgeAt(p0, p1, minX, minY)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if w0+bias0 >= 0 && w1+bias1 >= 0 && w2+bias2 >= 0 {
				g.shadePixel(x, y, w0, w1, w2, area, v, opts)
			}
			w0 += a12
			w1 += a20
			w2 += a01
		}
		w0Row += b12
		w1Row += b20
		w2Row += b01
	}
}

func (g *GPU) shadePixel(x, y int32, w0, w1, w2, area int64, v [3]vertex, opts primOpts) {
	l0 := float64(w0) / float64(area)
	l1 := float64(w1) / float64(area)
	l2 := float64(w2) / float64(area)

	cr := l0*float64(v[0].r) + l1*float64(v[1].r) + l2*float64(v[2].r)
	cg := l0*float64(v[0].g) + l1*float64(v[1].g) + l2*float64(v[2].g)
	cb := l0*float64(v[0].b) + l1*float64(v[1].b) + l2*float64(v[2].b)

	var u, vv uint8
	if opts.textured {
		u = uint8(l0*float64(v[0].u) + l1*float64(v[1].u) + l2*float64(v[2].u))
		vv = uint8(l0*float64(v[0].v) + l1*float64(v[1].v) + l2*float64(v[2].v))
	}

	g.plainPixel(vertex{x: x, y: y, r: uint8(cr), g: uint8(cg), b: uint8(cb), u: u, v: vv}, opts)
}

// plainPixel applies texture sampling, shading modulation, dithering,
// semi-transparency blending and the mask bit to a single already-
// positioned and already-colored pixel. Both the triangle rasterizer
// and the flat-filled rectangle path funnel through here.
func (g *GPU) plainPixel(vtx vertex, opts primOpts) {
	if vtx.x < int32(g.drawAreaLeft) || vtx.x > int32(g.drawAreaRight) ||
		vtx.y < int32(g.drawAreaTop) || vtx.y > int32(g.drawAreaBottom) {
		return
	}

	var r, gC, b uint8
	maskBit := opts.forceMask

	if opts.textured {
		texel := g.sampleTexture(vtx.u, vtx.v, opts)
		if texel == 0 {
			return
		}
		tr, tg, tb, tm := unpackColor15(texel)
		if opts.rawTexture {
			r, gC, b = tr, tg, tb
		} else {
			r, gC, b = modulate(tr, vtx.r), modulate(tg, vtx.g), modulate(tb, vtx.b)
		}
		maskBit = maskBit || tm
		if opts.semiTransparent && tm {
			r, gC, b = g.blend(vtx.x, vtx.y, r, gC, b, opts.blendMode)
		}
	} else {
		r, gC, b = vtx.r, vtx.g, vtx.b
		if g.dithering {
			r = ditherChannel(int(vtx.x), int(vtx.y), int32(r))
			gC = ditherChannel(int(vtx.x), int(vtx.y), int32(gC))
			b = ditherChannel(int(vtx.x), int(vtx.y), int32(b))
		}
		if opts.semiTransparent {
			r, gC, b = g.blend(vtx.x, vtx.y, r, gC, b, opts.blendMode)
		}
	}

	if g.preserveMaskedPixels && g.vram.Read(int(vtx.x), int(vtx.y))&0x8000 != 0 {
		return
	}
	g.vram.Write(int(vtx.x), int(vtx.y), packColor15(r, gC, b, maskBit))
}

func (g *GPU) sampleTexture(u, v uint8, opts primOpts) uint16 {
	mu := (uint32(u) &^ (uint32(g.texWindowMaskX) * 8)) | ((uint32(g.texWindowOffsetX) & uint32(g.texWindowMaskX)) * 8)
	mv := (uint32(v) &^ (uint32(g.texWindowMaskY) * 8)) | ((uint32(g.texWindowOffsetY) & uint32(g.texWindowMaskY)) * 8)

	pageX := int(opts.texPageX) * 64
	pageY := int(opts.texPageY) * 256
	clutX := int(opts.clutX)
	clutY := int(opts.clutY)

	switch opts.texDepth {
	case 0: // 4bpp
		w := g.vram.Read(pageX+int(mu)/4, pageY+int(mv))
		index := (w >> ((mu & 3) * 4)) & 0xF
		return g.vram.Read(clutX+int(index), clutY)
	case 1: // 8bpp
		w := g.vram.Read(pageX+int(mu)/2, pageY+int(mv))
		index := (w >> ((mu & 1) * 8)) & 0xFF
		return g.vram.Read(clutX+int(index), clutY)
	default: // 15bpp
		return g.vram.Read(pageX+int(mu), pageY+int(mv))
	}
}

func (g *GPU) blend(x, y int32, fr, fg, fb uint8, mode uint8) (uint8, uint8, uint8) {
	br, bg, bb, _ := unpackColor15(g.vram.Read(int(x), int(y)))
	mix := func(back, front uint8) uint8 {
		switch mode {
		case 0:
			return uint8((int32(back) + int32(front)) / 2)
		case 1:
			v := int32(back) + int32(front)
			if v > 255 {
				v = 255
			}
			return uint8(v)
		case 2:
			v := int32(back) - int32(front)
			if v < 0 {
				v = 0
			}
			return uint8(v)
		default:
			v := int32(back) + int32(front)/4
			if v > 255 {
				v = 255
			}
			return uint8(v)
		}
	}
	return mix(br, fr), mix(bg, fg), mix(bb, fb)
}

func (g *GPU) drawRectangle(words []uint32, op uint8) {
	textured := op&0x04 != 0
	semiTransparent := op&0x02 != 0
	rawTexture := op&0x01 != 0
	size := (op >> 3) & 3

	color := words[0]
	vx, vy := decodeVertexXY(words[1])
	x := vx + g.drawOffsetX
	y := vy + g.drawOffsetY

	idx := 2
	var u, v uint8
	var clutX, clutY uint16
	if textured {
		word := words[idx]
		idx++
		u, v = uint8(word), uint8(word>>8)
		clutX = uint16((word>>16)&0x3F) * 16
		clutY = uint16((word >> 22) & 0x1FF)
	}

	var w, h int32
	switch size {
	case 1:
		w, h = 1, 1
	case 2:
		w, h = 8, 8
	case 3:
		w, h = 16, 16
	default:
		wh := words[idx]
		w = int32(wh & 0x3FF)
		h = int32((wh >> 16) & 0x1FF)
	}

	opts := primOpts{
		textured: textured, semiTransparent: semiTransparent, rawTexture: rawTexture,
		texDepth: g.texPageDepth, texPageX: g.texPageBaseX, texPageY: g.texPageBaseY,
		clutX: clutX, clutY: clutY, blendMode: g.semiTransparency, forceMask: g.forceSetMask,
	}

	for row := int32(0); row < h; row++ {
		for col := int32(0); col < w; col++ {
			vtx := vertex{x: x + col, y: y + row, r: uint8(color), g: uint8(color >> 8), b: uint8(color >> 16)}
			if textured {
				du, dv := col, row
				if g.rectTextureXFlip {
					du = w - 1 - col
				}
				if g.rectTextureYFlip {
					dv = h - 1 - row
				}
				vtx.u = u + uint8(du)
				vtx.v = v + uint8(dv)
			}
			g.plainPixel(vtx, opts)
		}
	}
}

type lineVertex struct {
	x, y    int32
	r, g, b uint8
}

func (g *GPU) drawLine(words []uint32, op uint8) {
	shaded := op&0x10 != 0
	semiTransparent := op&0x02 != 0

	var verts []lineVertex
	color := words[0]
	i := 1
	for i < len(words) {
		if words[i] == polylineTerminator {
			break
		}
		x, y := decodeVertexXY(words[i])
		i++
		verts = append(verts, lineVertex{
			x: x + g.drawOffsetX, y: y + g.drawOffsetY,
			r: uint8(color), g: uint8(color >> 8), b: uint8(color >> 16),
		})
		if shaded && i < len(words) && words[i] != polylineTerminator {
			color = words[i]
			i++
		}
	}

	opts := primOpts{semiTransparent: semiTransparent, blendMode: g.semiTransparency, forceMask: g.forceSetMask}
	for k := 0; k+1 < len(verts); k++ {
		g.drawLineSegment(verts[k], verts[k+1], opts)
	}
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (g *GPU) drawLineSegment(a, b lineVertex, opts primOpts) {
	steps := absInt32(b.x - a.x)
	if dy := absInt32(b.y - a.y); dy > steps {
		steps = dy
	}
	if steps == 0 {
		g.plainPixel(vertex{x: a.x, y: a.y, r: a.r, g: a.g, b: a.b}, opts)
		return
	}
	for s := int32(0); s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := a.x + int32(float64(b.x-a.x)*t)
		y := a.y + int32(float64(b.y-a.y)*t)
		r := uint8(float64(a.r) + (float64(b.r)-float64(a.r))*t)
		gC := uint8(float64(a.g) + (float64(b.g)-float64(a.g))*t)
		bl := uint8(float64(a.b) + (float64(b.b)-float64(a.b))*t)
		g.plainPixel(vertex{x: x, y: y, r: r, g: gC, b: bl}, opts)
	}
}
