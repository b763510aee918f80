package scene

// NewDefaultSceneFile describes three spheres resting on a huge ground sphere:
// a hollow glass bubble, a diffuse blue sphere and a brushed gold sphere
func NewDefaultSceneFile() *SceneFile {
	f := newSceneFile()
	f.Name = "default"
	f.Description = "Glass bubble, diffuse and fuzzed metal spheres on a ground sphere"

	f.Camera = CameraSpec{
		LookFrom:    []float64{3, 3, 2},
		LookAt:      []float64{0, 0, -1},
		Up:          []float64{0, 1, 0},
		VFov:        20,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.5, // Focus plane passes through the centre sphere
	}

	f.Materials = map[string]MaterialSpec{
		"ground": {Type: MaterialLambertian, Albedo: []float64{0.8, 0.8, 0.0}},
		"blue":   {Type: MaterialLambertian, Albedo: []float64{0.1, 0.2, 0.5}},
		"glass":  {Type: MaterialDielectric, RefractiveIndex: 1.5},
		"gold":   {Type: MaterialMetal, Albedo: []float64{0.8, 0.6, 0.2}, Fuzz: 0.3},
	}

	f.Spheres = []SphereSpec{
		{Center: []float64{0, -100.5, -1}, Radius: 100, Material: "ground"},
		{Center: []float64{0, 0, -1}, Radius: 0.5, Material: "blue"},
		{Center: []float64{-1, 0, -1}, Radius: 0.5, Material: "glass"},
		{Center: []float64{-1, 0, -1}, Radius: -0.45, Material: "glass"}, // Inner wall of the bubble
		{Center: []float64{1, 0, -1}, Radius: 0.5, Material: "gold"},
	}

	return f
}

// NewDiffuseSceneFile describes a single gray diffuse sphere on a ground sphere,
// seen head-on through a 90 degree pinhole camera
func NewDiffuseSceneFile() *SceneFile {
	f := newSceneFile()
	f.Name = "diffuse"
	f.Description = "Gray diffuse sphere on a ground sphere"

	f.Camera = CameraSpec{
		LookFrom:    []float64{0, 0, 0},
		LookAt:      []float64{0, 0, -1},
		Up:          []float64{0, 1, 0},
		VFov:        90,
		AspectRatio: 16.0 / 9.0,
	}

	f.Materials = map[string]MaterialSpec{
		"gray": {Type: MaterialLambertian, Albedo: []float64{0.5, 0.5, 0.5}},
	}

	f.Spheres = []SphereSpec{
		{Center: []float64{0, 0, -1}, Radius: 0.5, Material: "gray"},
		{Center: []float64{0, -100.5, -1}, Radius: 100, Material: "gray"},
	}

	return f
}
