package game

// JourneyEndLabel is shown when no landmark list is configured.
const JourneyEndLabel = "journey end"

// LandmarkIndex maps a day onto the landmark list, clamped to the last entry.
func LandmarkIndex(day, journeyLength, count int) int {
	if count <= 0 || journeyLength <= 0 || day <= 0 {
		return 0
	}
	idx := day * count / journeyLength
	if idx >= count {
		idx = count - 1
	}
	return idx
}

// LandmarkName resolves an index into a display label.
func LandmarkName(landmarks []string, idx int) string {
	if idx < 0 || idx >= len(landmarks) {
		return JourneyEndLabel
	}
	return landmarks[idx]
}
