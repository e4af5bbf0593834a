// Package uploading publishes finished videos to YouTube through the
// resumable upload protocol and files the local copy into the library
// directory. Upload is opt-in; when disabled the stage still moves the
// video into the library so completed items always have a final file.
package uploading
