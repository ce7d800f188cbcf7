// Package imaging handles the image I/O around the cartoon pipeline.
//
// It decodes uploaded or on-disk images into the 3-channel buffers the
// pipeline consumes, and encodes results for display or download. Nothing in
// this package keeps state between calls.
//
// # Input
//
// Load, Decode, DecodeBytes and DecodeBase64 accept PNG, JPEG, GIF, BMP,
// TIFF and WebP. EXIF orientation is applied so that phone and webcam photos
// come out upright. The decoded image is always an *image.NRGBA with its
// origin at (0,0); grayscale and paletted sources are expanded to color.
//
// # Output
//
// Encode produces base64 PNG or JPEG suitable for a JSON response; Save
// writes a file and picks the codec from its extension. FitWithin bounds the
// working size of very large photos before they reach the pipeline, and Crop
// and CropRegion cut out the part of a photo to stylize.
//
// # Palettes
//
// Swatches reports each quantized color as hex "#RRGGBB", RGB and HSL,
// together with the share of the image it covers.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors while loading or saving
//   - Data that is not a supported image format
//   - Malformed base64 or data URLs
//   - Unsupported output formats
package imaging
