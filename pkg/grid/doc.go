/*
Package grid computes the geometry for cutting an image into an m by n grid of
equal square tiles.

The image is centered on a virtual canvas that is exactly the size of the
grid. Each cell of the canvas becomes one tile; the part of the image that
falls inside the cell is described by a source rectangle (in image space) and
a paste offset (in the tile's own frame). Cells that do not overlap the image
have an empty source rectangle and render as fully transparent squares.

Two tile size policies are available. PerAxisCeil, the default, picks the
smallest square that lets n columns cover the width and m rows cover the
height:

	S = ceil(max(W/n, H/m))

SquarePad first pads the image to a max(W, H) square and divides that side by
max(m, n), rounding down. It reproduces the output of the earlier Python
tooling but may leave a sliver of the image uncovered.

Compute is a pure function of its inputs; deriving a row count from the aspect
ratio is a separate step, see DeriveRows.
*/
package grid
