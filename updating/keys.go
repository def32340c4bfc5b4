package updating

// Message keys looked up through the Localizer. The update engine only
// ever asks for this fixed set.
const (
	KeyChecking    = "CHECKING"
	KeyUpdating    = "UPDATING"
	KeyDownloading = "DOWNLOADING"
	KeyVerifying   = "VERIFYING"
	KeyInstalling  = "INSTALLING"
	KeyRestarting  = "RESTARTING"
	KeyFailed      = "FAILED"
	KeyReboot      = "REBOOT"
	KeyContinue    = "CONTINUE"
)
