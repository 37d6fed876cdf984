/*
Package raster provides the two-dimensional 8-bit buffer that the image cipher operates on, along with adapters to move those buffers in and out of image files and a compact binary form.

# Buffers:

A Raster is an H×W grid of uint8 values stored row-major.
Once created it's never modified by this module: constructors copy the caller's data in, and accessors copy it back out.
Plain images, key buffers, and ciphertext all use the same type, so keeping track of which is which is the caller's job.

# Image adapters:

Load and Decode accept PNG, JPEG, GIF, and TIFF data. Colour images are flattened to a single grey channel using the ITU-R 601 luma weights.
Save and Encode always write PNG, since a lossy format would destroy ciphertext.

# Binary form:

Write and Read use a fixed header (magic, version, height, width) followed by the pixel bytes.
This is how key buffers are persisted, since they're not meant to be viewed as images.
*/
package raster
