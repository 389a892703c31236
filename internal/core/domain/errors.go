package domain

import "go.trai.ch/zerr"

var (
	// ErrPackageAlreadyExists is returned when two descriptors declare the same package id.
	ErrPackageAlreadyExists = zerr.New("package already exists")

	// ErrVariantAlreadyExists is returned when a package declares the same variant twice.
	ErrVariantAlreadyExists = zerr.New("variant already exists")

	// ErrNoVariants is returned when a package declares no variants.
	ErrNoVariants = zerr.New("package has no variants")

	// ErrPackageNotFound is returned when a requested package is not in the catalog.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrCatalogReadFailed is returned when a catalog file cannot be read.
	ErrCatalogReadFailed = zerr.New("failed to read catalog file")

	// ErrCatalogParseFailed is returned when a catalog file cannot be parsed.
	ErrCatalogParseFailed = zerr.New("failed to parse catalog file")

	// ErrCatalogInvalid is returned when a catalog file does not match the descriptor schema.
	ErrCatalogInvalid = zerr.New("catalog file does not match schema")

	// ErrInvalidOption is returned when an option definition is malformed.
	ErrInvalidOption = zerr.New("invalid option definition")

	// ErrProfileReadFailed is returned when a profile cannot be read.
	ErrProfileReadFailed = zerr.New("failed to read profile")

	// ErrProfileUnmarshalFailed is returned when a profile cannot be decoded.
	ErrProfileUnmarshalFailed = zerr.New("failed to unmarshal profile")

	// ErrProfileMarshalFailed is returned when a profile cannot be encoded.
	ErrProfileMarshalFailed = zerr.New("failed to marshal profile")

	// ErrProfileWriteFailed is returned when a profile cannot be written.
	ErrProfileWriteFailed = zerr.New("failed to write profile")

	// ErrInvalidProfileName is returned when a profile name cannot be used as a file name.
	ErrInvalidProfileName = zerr.New("invalid profile name")

	// ErrStoreCreateFailed is returned when the profile store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create profile store directory")

	// ErrInvalidArgument is returned when a CLI argument cannot be parsed.
	ErrInvalidArgument = zerr.New("invalid argument")

	// ErrWatchFailed is returned when a directory cannot be watched for changes.
	ErrWatchFailed = zerr.New("failed to watch directory")
)
