package parallel

// Band is a half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// SplitRows divides height rows into at most n contiguous bands of nearly
// equal size, each at least minRows tall (except possibly the last).
func SplitRows(height, n, minRows int) []Band {
	if height <= 0 {
		return nil
	}
	minRows = max(minRows, 1)
	n = max(min(n, (height+minRows-1)/minRows), 1)

	bands := make([]Band, 0, n)
	base, extra := height/n, height%n
	y := 0
	for i := range n {
		h := base
		if i < extra {
			h++
		}
		bands = append(bands, Band{Y0: y, Y1: y + h})
		y += h
	}
	return bands
}

// ForEachBand runs fn once per band of height rows. With a nil pool, or when
// only one band results, fn runs on the calling goroutine.
func ForEachBand(pool *WorkerPool, height, minRows int, fn func(b Band)) {
	workers := 1
	if pool != nil && pool.IsRunning() {
		workers = pool.Workers()
	}
	bands := SplitRows(height, workers, minRows)
	if len(bands) <= 1 {
		for _, b := range bands {
			fn(b)
		}
		return
	}
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() { fn(b) }
	}
	pool.ExecuteAll(work)
}
