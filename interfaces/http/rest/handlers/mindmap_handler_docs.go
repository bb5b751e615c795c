package handlers

// This file contains OpenAPI/Swagger documentation for MindMapHandler endpoints

// Generate builds a mind map from free-form notes
// @Summary Generate a mind map
// @Description Sends the notes to the configured generator and returns the normalized graph. Fallback is true when the generator output could not be used.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Notes to structure"
// @Success 200 {object} GenerateResponse "Generated mind map"
// @Failure 400 {object} errors.ErrorResponse "Empty or oversized notes"
// @Router /mindmaps/generate [post]

// Analyze computes statistics for an unsaved graph
// @Summary Analyze a graph document
// @Description Normalizes the posted graph document and returns its statistics and suggestions
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body exchange.Document true "Graph document"
// @Success 200 {object} services.AnalysisResult "Analysis"
// @Failure 400 {object} errors.ErrorResponse "Malformed document"
// @Router /mindmaps/analyze [post]

// ExportDocument renders an unsaved graph
// @Summary Export a graph document
// @Description Renders the posted graph document as json, svg or png
// @Tags export
// @Accept json
// @Produce json
// @Produce image/svg+xml
// @Produce image/png
// @Param format path string true "Export format" Enums(json, svg, png)
// @Param request body exchange.Document true "Graph document"
// @Success 200 {file} file "Exported file"
// @Failure 400 {object} errors.ErrorResponse "Unsupported format or malformed document"
// @Failure 500 {object} errors.ErrorResponse "Export failed"
// @Router /mindmaps/export.{format} [post]

// ShareDocument builds a view link for an unsaved graph
// @Summary Share a graph document
// @Description Encodes the posted graph document into a read-only view link
// @Tags share
// @Accept json
// @Produce json
// @Param request body exchange.Document true "Graph document"
// @Success 200 {object} map[string]string "Link"
// @Failure 400 {object} errors.ErrorResponse "Malformed document"
// @Router /mindmaps/share [post]

// List returns the caller's mind maps
// @Summary List mind maps
// @Description Returns the caller's saved mind maps, most recently updated first
// @Tags mindmaps
// @Produce json
// @Success 200 {object} map[string]interface{} "Mind map summaries and total"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /mindmaps [get]

// Create saves a new mind map
// @Summary Create a mind map
// @Description Saves a graph document under a title
// @Tags mindmaps
// @Accept json
// @Produce json
// @Param request body SaveRequest true "Mind map to save"
// @Success 201 {object} commands.SaveResult "Saved mind map ID"
// @Failure 400 {object} errors.ErrorResponse "Invalid title or document"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /mindmaps [post]

// Get returns one mind map
// @Summary Get a mind map
// @Tags mindmaps
// @Produce json
// @Param id path string true "Mind map ID"
// @Success 200 {object} MindMapResponse "Mind map"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id} [get]

// Update replaces a mind map
// @Summary Update a mind map
// @Description Replaces the title, description and graph of a saved mind map
// @Tags mindmaps
// @Accept json
// @Produce json
// @Param id path string true "Mind map ID"
// @Param request body SaveRequest true "Replacement"
// @Success 200 {object} commands.SaveResult "Saved mind map ID"
// @Failure 400 {object} errors.ErrorResponse "Invalid title or document"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id} [put]

// Delete removes a mind map
// @Summary Delete a mind map
// @Tags mindmaps
// @Param id path string true "Mind map ID"
// @Success 204 "Mind map deleted"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id} [delete]

// Analysis computes statistics for a saved mind map
// @Summary Analyze a mind map
// @Tags analysis
// @Produce json
// @Param id path string true "Mind map ID"
// @Success 200 {object} services.AnalysisResult "Analysis"
// @Failure 401 {object} errors.ErrorResponse "Unauthorized"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/analysis [get]

// Export renders a saved mind map
// @Summary Export a mind map
// @Tags export
// @Produce json
// @Produce image/svg+xml
// @Produce image/png
// @Param id path string true "Mind map ID"
// @Param format path string true "Export format" Enums(json, svg, png)
// @Success 200 {file} file "Exported file"
// @Failure 400 {object} errors.ErrorResponse "Unsupported format"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Failure 500 {object} errors.ErrorResponse "Export failed"
// @Security BearerAuth
// @Router /mindmaps/{id}/export.{format} [get]

// Share builds a view link for a saved mind map
// @Summary Share a mind map
// @Tags share
// @Produce json
// @Param id path string true "Mind map ID"
// @Success 200 {object} map[string]string "Link"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/share [get]

// AddNode adds a node
// @Summary Add a node
// @Description Adds a node. Without a position the node is placed on the default grid.
// @Tags nodes
// @Accept json
// @Produce json
// @Param id path string true "Mind map ID"
// @Param request body AddNodeRequest true "Node"
// @Success 201 {object} EditResponse "Updated mind map and new node ID"
// @Failure 400 {object} errors.ErrorResponse "Invalid label"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/nodes [post]

// UpdateNode relabels or moves a node
// @Summary Update a node
// @Description Changes the label and/or position of a node in one write. x and y must be given together.
// @Tags nodes
// @Accept json
// @Produce json
// @Param id path string true "Mind map ID"
// @Param nodeID path string true "Node ID"
// @Param request body UpdateNodeRequest true "Changes"
// @Success 200 {object} EditResponse "Updated mind map"
// @Failure 400 {object} errors.ErrorResponse "Nothing to update or invalid label"
// @Failure 404 {object} errors.ErrorResponse "Mind map or node not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/nodes/{nodeID} [patch]

// DeleteNode removes a node and its edges
// @Summary Delete a node
// @Tags nodes
// @Produce json
// @Param id path string true "Mind map ID"
// @Param nodeID path string true "Node ID"
// @Success 200 {object} EditResponse "Updated mind map"
// @Failure 404 {object} errors.ErrorResponse "Mind map or node not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/nodes/{nodeID} [delete]

// Connect adds an edge
// @Summary Connect two nodes
// @Tags edges
// @Accept json
// @Produce json
// @Param id path string true "Mind map ID"
// @Param request body ConnectRequest true "Endpoints"
// @Success 201 {object} EditResponse "Updated mind map and new edge ID"
// @Failure 400 {object} errors.ErrorResponse "Self loop or unknown endpoint"
// @Failure 404 {object} errors.ErrorResponse "Mind map not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/edges [post]

// Disconnect removes an edge
// @Summary Delete an edge
// @Tags edges
// @Produce json
// @Param id path string true "Mind map ID"
// @Param edgeID path string true "Edge ID"
// @Success 200 {object} EditResponse "Updated mind map"
// @Failure 404 {object} errors.ErrorResponse "Mind map or edge not found"
// @Security BearerAuth
// @Router /mindmaps/{id}/edges/{edgeID} [delete]
