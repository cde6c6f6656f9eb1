// Package gosom implements Kohonen self-organizing maps (SOM): an
// unsupervised neural lattice that learns a 2D topological embedding of
// high-dimensional data, for visualization, clustering preprocessing and
// dimensionality reduction.
//
// Features:
//
//   - Hexagonal and rectangular lattice topologies, with optional periodic
//     (toroidal) boundary conditions on hexagonal grids
//   - Euclidean, Manhattan and cosine distance metrics, shared by BMU search
//     and node difference computation
//   - Online training (sample-by-sample gradient-like nudges) and batch
//     training (Kinouchi weighted-mean updates) with gaussian, bubble and
//     mexican-hat neighborhood kernels
//   - Early stopping on map convergence (mapdiff) or quantization error
//     (bmudiff)
//   - Pluggable weight initialization: data-bounded random, seed-vector
//     planes (e.g. from an external PCA), or a saved snapshot
//   - Binary snapshot persistence with optional LZ4/ZSTD compression, to
//     local files or any blobstore.BlobStore (local FS, S3, MinIO)
//
// # Quick Start
//
//	data := [][]float64{...} // N samples, D features each
//
//	som, err := gosom.New(20, 20, data,
//	    gosom.WithTopology(topology.Hexagonal),
//	    gosom.WithMetric(distance.Euclidean),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	err = som.Train(context.Background(), func(o *gosom.TrainOptions) {
//	    o.Algorithm = gosom.Batch
//	    o.Epochs = 100
//	    o.Convergence = gosom.MapDiff
//	})
//
//	pos, err := som.BMU(query) // grid position of the best matching unit
//
// # Concurrency
//
// A SOM is not safe for concurrent mutation: two Train calls must never run
// against the same instance, and queries must not overlap a running Train.
// Within one batch epoch the accumulation work is parallelized internally
// with a deterministic reduction order, so results are reproducible for a
// fixed random seed.
package gosom
