package service

import "github.com/chrisfahey1010/LakeMapper/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInputPaths sets the bathymetry and survey shapefile paths.
func WithInputPaths(bathymetry, survey string) Option {
	return func(s *Service) {
		s.bathymetryPath = bathymetry
		s.surveyPath = survey
	}
}

// WithOutputDir sets the directory output artifacts are written under.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithTargetCRS sets the working CRS both layers are aligned to.
func WithTargetCRS(crs string) Option {
	return func(s *Service) {
		if crs != "" {
			s.targetCRS = crs
		}
	}
}

// WithExportCRS sets the CRS exported GeoJSON is written in.
func WithExportCRS(crs string) Option {
	return func(s *Service) {
		if crs != "" {
			s.exportCRS = crs
		}
	}
}

// WithBufferDistance sets the merge tolerance in target CRS units.
func WithBufferDistance(d float64) Option {
	return func(s *Service) {
		if d > 0 {
			s.bufferDistance = d
		}
	}
}

// WithAreaBounds sets the inclusive acreage admission range.
func WithAreaBounds(minArea, maxArea float64) Option {
	return func(s *Service) {
		if minArea <= maxArea {
			s.minArea = minArea
			s.maxArea = maxArea
		}
	}
}

// WithWorkerCount sets the number of merge workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
