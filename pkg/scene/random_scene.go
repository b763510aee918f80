package scene

import (
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// RandomSceneSeed is the seed used for the built-in random scene
const RandomSceneSeed = 1

// NewRandomSceneFile describes a field of small random spheres around three large ones.
// The same seed always produces the same scene.
func NewRandomSceneFile(seed int64) *SceneFile {
	sampler := core.NewSeededSampler(seed)

	f := newSceneFile()
	f.Name = "random"
	f.Description = "Field of small random spheres around three large ones"

	f.Camera = CameraSpec{
		LookFrom:      []float64{13, 2, 3},
		LookAt:        []float64{0, 0, 0},
		Up:            []float64{0, 1, 0},
		VFov:          20,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10,
	}
	f.Sampling.Width = 600

	f.Materials = map[string]MaterialSpec{
		"ground": {Type: MaterialLambertian, Albedo: []float64{0.5, 0.5, 0.5}},
		"glass":  {Type: MaterialDielectric, RefractiveIndex: 1.5},
		"brown":  {Type: MaterialLambertian, Albedo: []float64{0.4, 0.2, 0.1}},
		"mirror": {Type: MaterialMetal, Albedo: []float64{0.7, 0.6, 0.5}, Fuzz: 0},
	}
	f.Spheres = []SphereSpec{
		{Center: []float64{0, -1000, 0}, Radius: 1000, Material: "ground"},
	}

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())

			// Keep the space next to the big metal sphere empty
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			name := "glass"
			switch {
			case chooseMat < 0.8:
				name = fmt.Sprintf("diffuse_%d_%d", a, b)
				albedo := core.RandomVec3(sampler).MultiplyVec(core.RandomVec3(sampler))
				f.Materials[name] = MaterialSpec{Type: MaterialLambertian, Albedo: fromVec3(albedo)}
			case chooseMat < 0.95:
				name = fmt.Sprintf("metal_%d_%d", a, b)
				albedo := core.RandomVec3InRange(sampler, 0.5, 1)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				f.Materials[name] = MaterialSpec{Type: MaterialMetal, Albedo: fromVec3(albedo), Fuzz: fuzz}
			}

			f.Spheres = append(f.Spheres, SphereSpec{Center: fromVec3(center), Radius: 0.2, Material: name})
		}
	}

	f.Spheres = append(f.Spheres,
		SphereSpec{Center: []float64{0, 1, 0}, Radius: 1, Material: "glass"},
		SphereSpec{Center: []float64{-4, 1, 0}, Radius: 1, Material: "brown"},
		SphereSpec{Center: []float64{4, 1, 0}, Radius: 1, Material: "mirror"},
	)

	return f
}
