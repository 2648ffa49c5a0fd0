/*
Package ktx2 reads and writes KTX 2.0 texture containers and merges
single-layer Basis Universal (UASTC) textures into array textures.

A KTX2 file stores a fixed header, a data format descriptor (DFD), key/value
metadata, optional supercompression global data and one data block per mip
level. For an array texture each level holds the images of layer 0, 1, ...
N-1 back to back.

MergeArray takes decoded containers with identical geometry, vkFormat 0,
identical DFD and the same supercompression scheme (none or zstd) and stacks
them into one container with LayerCount = N. Uncompressed level data is
trimmed to whole 4x4 blocks before concatenation; zstd streams are
concatenated verbatim and their uncompressed lengths summed.

Supercompress and Inflate convert between plain and zstd supercompressed
containers.
*/
package ktx2
