package domain

import "errors"

var (
	ErrNoMapping        = errors.New("no client/campaign mapping for card")
	ErrNoUsableMedia    = errors.New("no usable attachment for selected mode")
	ErrNoDisplayAsset   = errors.New("no display-sized asset available")
	ErrNoSlidesUploaded = errors.New("no slides uploaded")
)
