package assets

import "darkest/internal/resource"

// LoadBasicLightMaps decodes the diffuse and specular DDS files.
func (l *Loader) LoadBasicLightMaps(diffuse, specular string) (resource.BasicLightMaps, error) {
	var lm resource.BasicLightMaps
	var err error
	if lm.Diffuse, err = l.LoadImage(diffuse); err != nil {
		return resource.BasicLightMaps{}, err
	}
	if lm.Specular, err = l.LoadImage(specular); err != nil {
		return resource.BasicLightMaps{}, err
	}
	return lm, nil
}

// LoadNormalMappedLightMaps decodes the diffuse, specular and normal
// DDS files.
func (l *Loader) LoadNormalMappedLightMaps(diffuse, specular, normal string) (resource.NormalMappedLightMaps, error) {
	basic, err := l.LoadBasicLightMaps(diffuse, specular)
	if err != nil {
		return resource.NormalMappedLightMaps{}, err
	}
	n, err := l.LoadImage(normal)
	if err != nil {
		return resource.NormalMappedLightMaps{}, err
	}
	return resource.NormalMappedLightMaps{
		Diffuse:  basic.Diffuse,
		Specular: basic.Specular,
		Normal:   n,
	}, nil
}
