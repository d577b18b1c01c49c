// Package download turns accepted matches into tagged audio files.
//
// A [Downloader] handles one [models.DownloadJob]: it skips jobs whose
// destination already exists, fetches the audio stream and cover art
// concurrently into temporary files, runs ffmpeg once to transcode and tag,
// and renames the output into place. A [Pool] runs jobs on a bounded number
// of workers and collects their results.
package download
