package tools

import "strings"

const releaseURLTemplate = "https://{host}/{org}/{project}/releases/download/{version}/{project}-{version}-{target}.tar.gz"

// DownloadURL renders the release archive URL for def on platform p.
func DownloadURL(def Definition, p Platform) string {
	r := strings.NewReplacer(
		"{host}", def.Host,
		"{org}", def.Org,
		"{project}", def.Project,
		"{version}", def.Version,
		"{target}", def.Token(p),
	)
	return r.Replace(releaseURLTemplate)
}
