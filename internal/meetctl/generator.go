package meetctl

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/meetglobe/internal/domain/model"
)

// unknownCityRate is the one-in-n chance that a participant lives in a city
// the dataset does not know.
const unknownCityRate = 20

var firstNames = []string{ //nolint:gochecknoglobals // generator vocabulary
	"Alice", "Bob", "Carla", "Dmitri", "Emeka", "Fatima", "Giulia", "Hiro",
	"Ines", "Jonas", "Kavya", "Liam", "Mei", "Nadia", "Omar", "Priya",
}

var knownCities = []string{ //nolint:gochecknoglobals // matches cities.yaml
	"Paris", "London", "New York", "Tokyo", "Berlin", "Sydney", "Sao Paulo",
	"Lagos", "Mumbai", "Toronto", "Cairo", "Singapore",
}

var unknownCities = []string{"Atlantis", "El Dorado", "Shangri-La"} //nolint:gochecknoglobals // generator vocabulary

type roster struct {
	Title        string
	Participants []model.Participant
}

// generateRosters builds n meetings of size participants. Names repeat
// across meetings so the server's member deduplication is exercised.
func generateRosters(seed uint64, n, size int) []roster {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]roster, n)
	for i := range out {
		ps := make([]model.Participant, size)
		for j := range ps {
			city := knownCities[rng.IntN(len(knownCities))]
			if rng.IntN(unknownCityRate) == 0 {
				city = unknownCities[rng.IntN(len(unknownCities))]
			}
			ps[j] = model.Participant{
				Name: fmt.Sprintf("%s %d", firstNames[rng.IntN(len(firstNames))], j),
				City: city,
			}
		}
		out[i] = roster{Title: fmt.Sprintf("Load %d", i+1), Participants: ps}
	}
	return out
}
