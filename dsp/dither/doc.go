// Package dither converts normalized float samples to integer PCM with
// optional dither noise and error-feedback noise shaping.
package dither
