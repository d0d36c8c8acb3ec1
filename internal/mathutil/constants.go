package mathutil

// AxisEpsilon is the shortest basis axis still treated as non-degenerate.
const AxisEpsilon = 1e-12

// gimbalEpsilon is the cos(pitch) below which Euler extraction pins Z to zero.
const gimbalEpsilon = 1e-9
