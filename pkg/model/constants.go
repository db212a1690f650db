package model

type Store string

const (
	KVConfig      Store = "kvConfig"
	UploadJournal Store = "uploadJournal"
	WatchFiles    Store = "watchFiles"
)

const (
	DeviceFingerprintKey = "deviceFingerprint"
)
