package render

// ProfilerData reports renderer state and the work done by the most recent
// SubmitFrame.
type ProfilerData struct {
	Width, Height      int
	ThreadCount        int
	DrawCallCount      int
	CulledDrawCalls    int
	PresentedTriangles int
	TextureCount       int
	TextureByteCount   int
	LightCount         int
	TotalDepthTests    int
	// TotalColorWrites counts pixels whose pixel shader wrote an index.
	// Depth-passing pixels rejected by an alpha test are not counted.
	TotalColorWrites   int
}

// ProfilerData returns the current diagnostics snapshot.
func (sr *SoftwareRenderer) ProfilerData() ProfilerData {
	data := ProfilerData{
		Width:              sr.raster.width,
		Height:             sr.raster.height,
		ThreadCount:        1,
		DrawCallCount:      sr.drawCallCount,
		CulledDrawCalls:    sr.culledDrawCalls,
		PresentedTriangles: sr.raster.stats.presentedTriangles,
		TextureCount:       sr.objectTextures.usedCount(),
		LightCount:         sr.lights.usedCount(),
		TotalDepthTests:    sr.raster.stats.depthTests,
		TotalColorWrites:   sr.raster.stats.colorWrites,
	}
	sr.objectTextures.each(func(_ int32, t *ObjectTexture) {
		data.TextureByteCount += len(t.Texels)
	})
	return data
}
