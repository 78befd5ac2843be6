package version

const (
	AppName        = "Discord Invisible Bot"
	AppDescription = "Creates, assigns and lists roles and channels hidden from the default view."
	AppVersion     = "1.2.0"
)
