package fetch

// Package fetch implements the vendor provisioning pipeline: it ensures the
// target directory exists, retrieves each manifest asset over HTTP, and
// writes it to disk. It manages task lifecycle, concurrency limits, optional
// retries, and progress propagation to the CLI. A failed asset never aborts
// the rest of the batch.
