package config

import "time"

const appName = "christina"

// A capture plus OCR takes a few hundred milliseconds; faster polling only queues.
const minWatchInterval = 250 * time.Millisecond

var knownFormats = map[string]bool{"png": true, "jpg": true, "jpeg": true, "bmp": true, "tif": true, "tiff": true}

var knownEngines = map[string]bool{"tesseract": true, "gosseract": true, "mock": true}
