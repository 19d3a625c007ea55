// Package links converts raw "app opened with X" signals into canonical
// in-app links.
//
// Three event shapes are understood: URLOpened (operating system URL opens),
// AttributionOpened (attribution SDK session payloads) and PushOpened
// (notification tap payloads). Normalizer maps each of them onto a single
// absolute URL rooted at the application domain, persisting any campaignId
// it sees through a CampaignRecorder. Events that cannot be turned into a
// link are reported with an error wrapping ErrDropped; callers log and
// discard them.
package links
