// Package source describes where form schemas come from (files, fs.FS, URLs)
// and the Loader contract that turns them into form.Form values.
package source
