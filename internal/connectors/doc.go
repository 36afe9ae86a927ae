// Package connectors holds the sources that feed documents into the object
// store. The filesystem connector mirrors a local directory tree.
package connectors
