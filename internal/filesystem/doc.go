/*
Package filesystem reads and writes whole files with retries for NFS stale
file handle errors.

Media inputs often live on NFS mounts, where a file replaced on the server
makes open handles fail with ESTALE (errno 116). ReadFile and WriteFile
retry those failures with exponential backoff and return every other error
immediately:

	data, err := filesystem.ReadFile("/nfs/media/song.wav", filesystem.DefaultRetryConfig())

The defaults are 3 retries starting at 50ms and capped at 500ms.

Retry metrics are recorded through an Observer set with SetObserver; the
metrics package provides one.
*/
package filesystem
