// Package services implements the external collaborators used by the download pipeline.
//
// # Similar Songs
//
// Every provider implements [Suggester]:
//   - [OpenAISuggester] : text completion; bearer auth via an [oauth2.StaticTokenSource]
//   - [LastFMSuggester] : track.getsimilar, query split into track and artist by [SplitQuery]
//   - [SearchSuggester] : yt-dlp flat search; results too close to the top hit are dropped by [FilterSimilar]
//   - [NoneSuggester] : always empty
//
// HTTP providers share [APIService], which adds a [rate.Limiter] and a client timeout to plain JSON requests.
//
// # Download
//
// [YtDlp] runs yt-dlp to extract the best audio stream as mp3, reads the final title and path from its
// --print output, and renames the file to the sanitized title.
//
// # Transfer
//
// [ADB] probes `adb devices`, pushes the file and broadcasts a media-scanner intent for it.
//
// # Error Handling
//
// Services wrap sentinels from the shared package:
//   - [shared.ErrSuggestionUnavailable] : provider failed; the pipeline degrades to the sentinel pair
//   - [shared.ErrMissingCredentials] : provider API key not configured
//   - [shared.ErrNotFound] : yt-dlp finished but the file is missing
//   - [shared.ErrDeviceUnavailable] : no device in "device" state
//   - [shared.ErrTransferFailed] : adb push or rescan exited non-zero
package services
