// Package exporting drives the editor's export dialog and captures the
// rendered file. The browser half clicks through the dialog and names the
// output; the filesystem half watches the download directory until the file
// lands and its size stops moving, then moves it into the item's staging
// directory.
package exporting
