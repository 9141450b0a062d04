package ir

import "fmt"

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// OversString formats a legal-ball count the way scorebooks do: "12.3"
// is twelve completed overs and three balls.
func OversString(balls int) string {
	if balls < 0 {
		balls = 0
	}
	return fmt.Sprintf("%d.%d", balls/BallsPerOver, balls%BallsPerOver)
}

// OverIndex returns the 0-based over and 1-based ball of a legal delivery
// that brought the count to after. The sixth ball stays on its own over.
func OverIndex(after int) (over, ball int) {
	if after <= 0 {
		return 0, 0
	}
	if after%BallsPerOver == 0 {
		return after/BallsPerOver - 1, BallsPerOver
	}
	return after / BallsPerOver, after % BallsPerOver
}
